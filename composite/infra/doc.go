// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - ProductClient, RecommendationClient, ReviewClient: clientes HTTP dos serviços folha
//   - ClientLimiters: token bucket por cliente usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para bulkhead e limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: estatísticas das chamadas protegidas
package infra

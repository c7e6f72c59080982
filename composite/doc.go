// Package composite expõe o agregador de produto via HTTP (chi).
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (Outcome, Failure, portas dos clientes)
//   - application: breaker, política de resiliência, agregador, merge e escrita
//   - infra: clientes HTTP dos serviços folha, token bucket, semáforo, stats
//   - composite (este pacote): rotas, middlewares HTTP e tradução de Failure para status
//
// Fluxo de GET /product-composite/{productId}:
//
//  1. request id, log, recover, rate limit e limite de concorrência
//  2. converte o productId do path (não-inteiro responde 400)
//  3. application.Aggregator consulta os três serviços em paralelo
//  4. Failure vira status + HTTPErrorInfo; sucesso vira ProductAggregate
package composite

// Package domain define contratos e tipos de domínio do gateway composto:
// identidade do produto, resultado de chamada (Outcome), taxonomia de falhas,
// estados do circuit breaker e portas para os serviços folha.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros (ex.: a política de merge)
// sem stubs de rede.
package domain

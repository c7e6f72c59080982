// Package leafsvc implementa os serviços folha (product, recommendation, review) em
// memória, com o mesmo contrato HTTP dos serviços reais.
//
// É usado pelo binário cmd/example-server e pelos testes de ponta a ponta do gateway.
// Faults permite injetar atraso e status de erro em tempo de execução.
package leafsvc

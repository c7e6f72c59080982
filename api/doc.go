// Package api define o contrato compartilhado entre o gateway composto e os
// serviços folha (product, recommendation, review).
//
// Os tipos aqui são apenas formatos de request/response (JSON). Nenhuma regra de
// negócio mora neste pacote.
package api

// Package application contém os casos de uso do gateway composto:
// agregação concorrente (Aggregator + Merge), escrita em fan-out (Writer) e a
// política de resiliência por downstream (Breaker + Policy + bulkhead).
//
// Ele depende apenas do pacote domain (e de libs utilitárias) e não conhece net/http.
// Ex.: Merge(id, outcomes) é uma função pura sobre três Outcome.
package application

package domain

import "context"

// Key identifica quem está sendo limitado (IP de origem, game id).
type Key string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Allow também registra a tentativa quando permitida: decidir e registrar
// na mesma chamada evita a corrida checagem-depois-ação entre requisições
// concorrentes.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave. A implementação pode manter
// cache, TTL, limpeza periódica, etc.
type LimiterStore interface {
	Get(Key) Limiter
}

// SlotPool representa um recurso com capacidade finita (requisições em voo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar. Ao adquirir,
// retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

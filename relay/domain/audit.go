package domain

import (
	"context"
	"time"
)

// AuditKind classifica o evento de auditoria.
type AuditKind string

const (
	AuditAccepted AuditKind = "accepted" // doação admitida na fila
	AuditRejected AuditKind = "rejected" // qualquer recusa na ingestão
	AuditServed   AuditKind = "served"   // doação entregue via polling
)

// AuditEvent registra uma decisão do relay.
//
// Observação: cuidado com cardinalidade — Key e Game viram chaves em bases
// como redis, então implementações devem aplicar TTL onde fizer sentido.
type AuditEvent struct {
	Kind   AuditKind
	Key    Key    // origem (ingestão) ou game id (polling)
	Reason string // código de recusa quando Kind == AuditRejected
	Game   string
	ID     string // donation id, quando houver
	Amount int64

	At time.Time
}

// AuditStore é a estratégia de persistência da trilha de auditoria.
//
// Implementações podem armazenar em memória, redis, etc. Quem chama deve
// tratar erro como best-effort (não derrubar a requisição).
type AuditStore interface {
	Record(ctx context.Context, ev AuditEvent) error
}

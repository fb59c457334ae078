package infra

import (
	"context"
	"sync"

	"donation-relay/relay/domain"
)

// Counters agrega eventos de auditoria por desfecho.
type Counters struct {
	Accepted int64
	Rejected int64
	Served   int64
}

// MemoryAuditStore é a implementação padrão, em memória.
//
// Não expira nada: os mapas crescem com o número de motivos (limitado) e de
// game ids (limitado na prática). Para retenção real, use o RedisAuditStore.
type MemoryAuditStore struct {
	mu       sync.Mutex
	total    Counters
	byReason map[string]int64
	byGame   map[string]int64
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{
		byReason: make(map[string]int64),
		byGame:   make(map[string]int64),
	}
}

func (s *MemoryAuditStore) Record(_ context.Context, ev domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case domain.AuditAccepted:
		s.total.Accepted++
	case domain.AuditRejected:
		s.total.Rejected++
		if ev.Reason != "" {
			s.byReason[ev.Reason]++
		}
	case domain.AuditServed:
		s.total.Served++
		if ev.Game != "" {
			s.byGame[ev.Game]++
		}
	}
	return nil
}

func (s *MemoryAuditStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryAuditStore) ByReason() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byReason))
	for k, v := range s.byReason {
		out[k] = v
	}
	return out
}

func (s *MemoryAuditStore) ByGame() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byGame))
	for k, v := range s.byGame {
		out[k] = v
	}
	return out
}

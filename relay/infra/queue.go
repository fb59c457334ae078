package infra

import (
	"sync"
	"time"

	"donation-relay/relay/domain"
)

// Queue implementa domain.Queue como slice guardado por mutex, com expiração
// varrida (amortizada) em vez de timers por registro.
//
// Regra única de remoção: um registro sai em created+ttl, ou antes disso em
// processed+buffer quando já foi entregue — o que vier primeiro. A varredura
// roda no início de toda operação pública, então registros expirados nunca
// são observados mesmo sem janitor.
type Queue struct {
	mu      sync.Mutex
	entries []*queueEntry

	ttl          time.Duration
	buffer       time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type queueEntry struct {
	d        domain.Donation
	removeAt time.Time // zero até ser processada
}

type QueueOption func(*Queue)

func WithQueueCleanupEvery(d time.Duration) QueueOption {
	return func(q *Queue) { q.cleanupEvery = d }
}

func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// NewQueue cria a fila. ttl é a expiração desde a criação; buffer é a
// permanência após o processamento (janela de exibição do cliente).
func NewQueue(ttl, buffer time.Duration, opts ...QueueOption) *Queue {
	q := &Queue{
		ttl:          ttl,
		buffer:       buffer,
		cleanupEvery: 30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) TTL() time.Duration          { return q.ttl }
func (q *Queue) Buffer() time.Duration       { return q.buffer }
func (q *Queue) CleanupEvery() time.Duration { return q.cleanupEvery }

// Append adiciona ao fim (ordem de chegada) e devolve a posição na fila viva.
func (q *Queue) Append(d domain.Donation) int {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked(now)
	q.entries = append(q.entries, &queueEntry{d: d})
	return len(q.entries)
}

// PopNext acha a primeira não processada, marca como processada e agenda a
// remoção física para depois da janela de exibição — tudo sob o mesmo lock,
// então um registro nunca é entregue duas vezes. Devolve também quantas
// pendentes restam depois desta.
func (q *Queue) PopNext() (domain.Donation, int, bool) {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked(now)

	var found *queueEntry
	for _, ent := range q.entries {
		if !ent.d.Processed {
			found = ent
			break
		}
	}
	if found == nil {
		return domain.Donation{}, 0, false
	}

	found.d.Processed = true
	found.d.ProcessedAt = now
	found.removeAt = now.Add(q.buffer)

	pending := 0
	for _, ent := range q.entries {
		if !ent.d.Processed {
			pending++
		}
	}
	return found.d, pending, true
}

// Filter devolve cópias, filtradas por status e truncadas em limit.
func (q *Queue) Filter(st domain.Status, limit int) []domain.Donation {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked(now)

	out := make([]domain.Donation, 0, limit)
	for _, ent := range q.entries {
		if len(out) >= limit {
			break
		}
		switch st {
		case domain.StatusPending:
			if ent.d.Processed {
				continue
			}
		case domain.StatusProcessed:
			if !ent.d.Processed {
				continue
			}
		}
		out = append(out, ent.d)
	}
	return out
}

func (q *Queue) Len() int {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked(now)
	return len(q.entries)
}

func (q *Queue) Pending() int {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.sweepLocked(now)
	n := 0
	for _, ent := range q.entries {
		if !ent.d.Processed {
			n++
		}
	}
	return n
}

// Sweep força uma varredura (janitor).
func (q *Queue) Sweep() {
	now := q.now()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked(now)
}

func (q *Queue) sweepLocked(now time.Time) {
	keep := q.entries[:0]
	for _, ent := range q.entries {
		if !now.Before(ent.d.CreatedAt.Add(q.ttl)) {
			continue
		}
		if !ent.removeAt.IsZero() && !now.Before(ent.removeAt) {
			continue
		}
		keep = append(keep, ent)
	}
	// zera a cauda para o GC recolher os removidos
	for i := len(keep); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = keep
}

func (q *Queue) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, q.cleanupEvery, q.Sweep)
}

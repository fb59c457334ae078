package infra

import (
	"strings"
	"sync"
	"time"

	"donation-relay/relay/domain"
)

// DedupeTracker implementa domain.Deduper com dois mecanismos sob o mesmo
// mutex:
//
//   - conjunto "já visto" de donation ids, esquecido após o horizonte — um id
//     reenviado depois disso é tratado como novo (risco aceito, limita a
//     memória);
//   - cooldown por doador: só o instante da última aceitação importa, não é
//     janela deslizante.
type DedupeTracker struct {
	mu         sync.Mutex
	seen       map[string]time.Time
	lastAccept map[string]time.Time

	horizon      time.Duration
	cooldown     time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type DedupeOption func(*DedupeTracker)

func WithDedupeCleanupEvery(d time.Duration) DedupeOption {
	return func(t *DedupeTracker) { t.cleanupEvery = d }
}

func WithDedupeClock(now func() time.Time) DedupeOption {
	return func(t *DedupeTracker) { t.now = now }
}

func NewDedupeTracker(horizon, cooldown time.Duration, opts ...DedupeOption) *DedupeTracker {
	t := &DedupeTracker{
		seen:         make(map[string]time.Time),
		lastAccept:   make(map[string]time.Time),
		horizon:      horizon,
		cooldown:     cooldown,
		cleanupEvery: 5 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *DedupeTracker) Cooldown() time.Duration { return t.cooldown }
func (t *DedupeTracker) CleanupEvery() time.Duration { return t.cleanupEvery }

// NormalizeDonor reduz o e-mail a uma chave estável de cooldown. Sem isso,
// flipar maiúsculas burlaria o limite por doador.
func NormalizeDonor(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Admit decide e registra atomicamente. Ordem: duplicata primeiro (mantém o
// código de erro estável quando as duas condições valem), depois cooldown.
// Uma recusa não registra nada — só aceitação move o relógio do doador.
func (t *DedupeTracker) Admit(id, donor string) error {
	donor = NormalizeDonor(donor)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cleanupLocked(now)

	if at, ok := t.seen[id]; ok && now.Sub(at) < t.horizon {
		return domain.ErrDuplicate
	}
	if at, ok := t.lastAccept[donor]; ok && now.Sub(at) < t.cooldown {
		return domain.ErrCooldown
	}

	t.seen[id] = now
	t.lastAccept[donor] = now
	return nil
}

// Cleanup descarta ids fora do horizonte e doadores fora do cooldown.
func (t *DedupeTracker) Cleanup() {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanupLocked(now)
}

func (t *DedupeTracker) cleanupLocked(now time.Time) {
	for id, at := range t.seen {
		if now.Sub(at) >= t.horizon {
			delete(t.seen, id)
		}
	}
	for donor, at := range t.lastAccept {
		if now.Sub(at) >= t.cooldown {
			delete(t.lastAccept, donor)
		}
	}
}

func (t *DedupeTracker) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, t.cleanupEvery, t.Cleanup)
}

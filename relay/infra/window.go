package infra

import (
	"sync"
	"time"

	"donation-relay/relay/domain"
)

// WindowStore é uma implementação de domain.LimiterStore por janela deslizante
// com contagem exata: guarda, por chave, os instantes das últimas requisições
// aceitas e recusa quando a janela já contém o máximo.
//
// Diferente de um token bucket, a recusa dura até o carimbo mais antigo sair
// da janela — "no máximo N por janela" vale literalmente, que é o contrato
// esperado pelos clientes de polling.
type WindowStore struct {
	mu           sync.Mutex
	entries      map[string]*windowEntry
	window       time.Duration
	max          int
	cleanupEvery time.Duration
	now          func() time.Time
}

type windowEntry struct {
	stamps []time.Time
}

type WindowOption func(*WindowStore)

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

// WithWindowClock troca a fonte de tempo (testes).
func WithWindowClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func NewWindowStore(max int, window time.Duration, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:      make(map[string]*windowEntry),
		window:       window,
		max:          max,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Max() int              { return s.max }
func (s *WindowStore) Window() time.Duration { return s.window }

func (s *WindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get implementa domain.LimiterStore. O limiter devolvido é só um handle
// para a chave; o estado vive no store, sob um único mutex.
func (s *WindowStore) Get(key domain.Key) domain.Limiter {
	return keyLimiter{s: s, key: string(key)}
}

type keyLimiter struct {
	s   *WindowStore
	key string
}

func (l keyLimiter) Allow() bool { return l.s.allow(l.key) }

// allow poda, decide e registra na mesma seção crítica. Recusa não registra:
// requisições bloqueadas não estendem o bloqueio.
func (s *WindowStore) allow(key string) bool {
	now := s.now()
	cutoff := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		ent = &windowEntry{}
		s.entries[key] = ent
	}

	keep := ent.stamps[:0]
	for _, t := range ent.stamps {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	ent.stamps = keep

	if len(ent.stamps) >= s.max {
		return false
	}
	ent.stamps = append(ent.stamps, now)
	return true
}

// Cleanup remove chaves sem atividade dentro da janela. Sem isso o mapa
// cresce com um slice vazio por chave já vista (IPs passageiros, jogos
// desligados).
func (s *WindowStore) Cleanup() {
	cutoff := s.now().Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		idle := true
		for _, t := range ent.stamps {
			if t.After(cutoff) {
				idle = false
				break
			}
		}
		if idle {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}

package infra

import "time"

// DoneContext é o mínimo necessário para aceitar context.Context sem importar
// context aqui. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}

// startJanitor roda cleanup periodicamente até o contexto encerrar.
// every <= 0 desabilita.
func startJanitor(ctx DoneContext, every time.Duration, cleanup func()) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				cleanup()
			}
		}
	}()
}

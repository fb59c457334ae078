package relay

import (
	"context"
	"net/http"
	"time"

	"donation-relay/relay/infra"
)

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita requisições em voo no processo inteiro.
// Com Max <= 0 o middleware some. Saturado, responde 503 — o webhook da
// plataforma reentrega e o cliente de polling tenta de novo sozinho.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	pool := infra.NewSlotPool(opts.Max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if opts.AcquireTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.AcquireTimeout)
				defer cancel()
			}

			release, ok := pool.Acquire(ctx)
			if !ok {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

package infra

import (
	"context"

	"donation-relay/relay/domain"
)

type slotPool struct {
	sem chan struct{}
}

// NewSlotPool cria um pool simples baseado em channel com capacidade `max`.
func NewSlotPool(max int) domain.SlotPool {
	return &slotPool{sem: make(chan struct{}, max)}
}

func (p *slotPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

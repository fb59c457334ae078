package infra

import (
	"testing"
	"time"

	"donation-relay/relay/domain"
)

func newTestQueue(clk *fakeClock) *Queue {
	return NewQueue(60*time.Second, 10*time.Second, WithQueueClock(clk.Now))
}

func donation(id string, clk *fakeClock) domain.Donation {
	return domain.Donation{
		ID:         id,
		DonorName:  "Ana",
		DonorEmail: "a@x.com",
		Amount:     5000,
		Message:    domain.DefaultMessage,
		CreatedAt:  clk.Now(),
	}
}

func TestQueue_AppendReturnsPosition(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	if pos := q.Append(donation("d1", clk)); pos != 1 {
		t.Fatalf("expected position 1, got %d", pos)
	}
	if pos := q.Append(donation("d2", clk)); pos != 2 {
		t.Fatalf("expected position 2, got %d", pos)
	}
}

func TestQueue_PopNextIsFIFO(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))
	q.Append(donation("d2", clk))

	d, pending, ok := q.PopNext()
	if !ok || d.ID != "d1" {
		t.Fatalf("expected d1 first, got ok=%v id=%q", ok, d.ID)
	}
	if pending != 1 {
		t.Fatalf("expected 1 pending after pop, got %d", pending)
	}
	if !d.Processed || d.ProcessedAt.IsZero() {
		t.Fatalf("expected popped donation to be marked processed")
	}
}

func TestQueue_PopNextNeverReturnsSameTwice(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))

	if _, _, ok := q.PopNext(); !ok {
		t.Fatalf("expected first pop to find d1")
	}

	// d1 ainda está fisicamente na fila (janela de exibição), mas nunca
	// volta pelo pop
	if _, _, ok := q.PopNext(); ok {
		t.Fatalf("expected second pop to find nothing")
	}
	if got := q.Len(); got != 1 {
		t.Fatalf("expected d1 still physically present, len=%d", got)
	}
}

func TestQueue_ProcessedRemovedAfterDisplayBuffer(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))
	q.PopNext()

	clk.Advance(9 * time.Second)
	if got := q.Len(); got != 1 {
		t.Fatalf("expected d1 visible during display buffer, len=%d", got)
	}

	clk.Advance(2 * time.Second)
	if got := q.Len(); got != 0 {
		t.Fatalf("expected d1 removed after display buffer, len=%d", got)
	}
}

func TestQueue_ExpiresAtTTLRegardlessOfState(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))

	clk.Advance(61 * time.Second)
	if got := q.Len(); got != 0 {
		t.Fatalf("expected unprocessed donation swept at ttl, len=%d", got)
	}
	if _, _, ok := q.PopNext(); ok {
		t.Fatalf("expected nothing to pop after expiry")
	}
}

func TestQueue_RemovalIsEarliestOfTTLAndBuffer(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))

	// processada aos 55s de vida: o ttl de 60s vence o buffer de 10s
	clk.Advance(55 * time.Second)
	if _, _, ok := q.PopNext(); !ok {
		t.Fatalf("expected pop at 55s")
	}

	clk.Advance(6 * time.Second)
	if got := q.Len(); got != 0 {
		t.Fatalf("expected removal at created+ttl, len=%d", got)
	}
}

func TestQueue_FilterByStatus(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))
	q.Append(donation("d2", clk))
	q.PopNext() // processa d1

	pending := q.Filter(domain.StatusPending, 100)
	if len(pending) != 1 || pending[0].ID != "d2" {
		t.Fatalf("expected only d2 pending, got %v", pending)
	}

	processed := q.Filter(domain.StatusProcessed, 100)
	if len(processed) != 1 || processed[0].ID != "d1" {
		t.Fatalf("expected only d1 processed, got %v", processed)
	}

	all := q.Filter(domain.StatusAll, 100)
	if len(all) != 2 {
		t.Fatalf("expected 2 donations in all view, got %d", len(all))
	}
}

func TestQueue_FilterHonorsLimit(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	for _, id := range []string{"d1", "d2", "d3"} {
		q.Append(donation(id, clk))
	}

	out := q.Filter(domain.StatusAll, 2)
	if len(out) != 2 || out[0].ID != "d1" || out[1].ID != "d2" {
		t.Fatalf("expected first 2 in insertion order, got %v", out)
	}
}

func TestQueue_PendingCountsOnlyUnprocessed(t *testing.T) {
	clk := newFakeClock()
	q := newTestQueue(clk)

	q.Append(donation("d1", clk))
	q.Append(donation("d2", clk))
	q.PopNext()

	if got := q.Pending(); got != 1 {
		t.Fatalf("expected 1 pending, got %d", got)
	}
	if got := q.Len(); got != 2 {
		t.Fatalf("expected 2 physically present, got %d", got)
	}
}

package infra

import (
	"context"
	"testing"

	"donation-relay/relay/domain"
)

func TestMemoryAuditStore_Counters(t *testing.T) {
	s := NewMemoryAuditStore()
	ctx := context.Background()

	_ = s.Record(ctx, domain.AuditEvent{Kind: domain.AuditAccepted, ID: "d1"})
	_ = s.Record(ctx, domain.AuditEvent{Kind: domain.AuditRejected, Reason: domain.CodeDuplicate})
	_ = s.Record(ctx, domain.AuditEvent{Kind: domain.AuditRejected, Reason: domain.CodeRateLimit})
	_ = s.Record(ctx, domain.AuditEvent{Kind: domain.AuditRejected, Reason: domain.CodeRateLimit})
	_ = s.Record(ctx, domain.AuditEvent{Kind: domain.AuditServed, Game: "roblox_test123", ID: "d1"})

	total := s.Total()
	if total.Accepted != 1 || total.Rejected != 3 || total.Served != 1 {
		t.Fatalf("unexpected totals: %+v", total)
	}
	if got := s.ByReason()[domain.CodeRateLimit]; got != 2 {
		t.Fatalf("expected 2 rate-limit rejections, got %d", got)
	}
	if got := s.ByGame()["roblox_test123"]; got != 1 {
		t.Fatalf("expected 1 served for game, got %d", got)
	}
}

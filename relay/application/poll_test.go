package application

import (
	"context"
	"errors"
	"testing"

	"donation-relay/relay/domain"
)

func TestValidateGameID(t *testing.T) {
	valid := []string{"roblox_test123", "roblox_abcde", "roblox_12345678"}
	for _, id := range valid {
		if err := ValidateGameID(id); err != nil {
			t.Fatalf("expected %q to be valid, got %v", id, err)
		}
	}

	invalid := []string{"", "roblox_", "roblox_abc", "game_123456", "ROBLOX_test123"}
	for _, id := range invalid {
		if err := ValidateGameID(id); !errors.Is(err, domain.ErrInvalidGameID) {
			t.Fatalf("expected %q to be invalid, got %v", id, err)
		}
	}
}

type popQueue struct {
	fakeQueue
	next    domain.Donation
	pending int
	has     bool
}

func (q *popQueue) PopNext() (domain.Donation, int, bool) {
	if !q.has {
		return domain.Donation{}, 0, false
	}
	q.has = false
	return q.next, q.pending, true
}

func (q *popQueue) Pending() int { return q.pending }

func TestPoll_Next_InvalidGameID(t *testing.T) {
	s := NewPoll(fakeLimiterStore{allow: true}, &popQueue{}, nil)

	if _, err := s.Next(context.Background(), "bad"); !errors.Is(err, domain.ErrInvalidGameID) {
		t.Fatalf("expected ErrInvalidGameID, got %v", err)
	}
}

func TestPoll_Next_RateLimited(t *testing.T) {
	s := NewPoll(fakeLimiterStore{allow: false}, &popQueue{}, nil)

	if _, err := s.Next(context.Background(), "roblox_test123"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestPoll_Next_EmptyQueue(t *testing.T) {
	s := NewPoll(fakeLimiterStore{allow: true}, &popQueue{}, nil)

	res, err := s.Next(context.Background(), "roblox_test123")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Donation != nil || res.QueueSize != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestPoll_Next_ReturnsDisplayProjection(t *testing.T) {
	q := &popQueue{
		next: domain.Donation{
			ID:         "d1",
			DonorName:  "Ana",
			DonorEmail: "a@x.com",
			Amount:     5000,
			Message:    domain.DefaultMessage,
		},
		pending: 2,
		has:     true,
	}
	s := NewPoll(fakeLimiterStore{allow: true}, q, nil)

	res, err := s.Next(context.Background(), "roblox_test123")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Donation == nil {
		t.Fatalf("expected a donation")
	}
	if res.Donation.ID != "d1" || res.Donation.DisplayTime != domain.DisplayTimeMS {
		t.Fatalf("unexpected projection: %+v", res.Donation)
	}
	if res.QueueSize != 2 {
		t.Fatalf("expected queue size 2, got %d", res.QueueSize)
	}
}

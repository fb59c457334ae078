package application

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"donation-relay/relay/domain"
)

type fakeLimiter bool

func (f fakeLimiter) Allow() bool { return bool(f) }

type fakeLimiterStore struct {
	allow bool
}

func (s fakeLimiterStore) Get(domain.Key) domain.Limiter { return fakeLimiter(s.allow) }

type fakeDeduper struct {
	err      error
	gotID    string
	gotDonor string
}

func (d *fakeDeduper) Admit(id, donor string) error {
	d.gotID, d.gotDonor = id, donor
	return d.err
}

func (d *fakeDeduper) Cooldown() time.Duration { return 10 * time.Second }

type fakeQueue struct {
	appended []domain.Donation
}

func (q *fakeQueue) Append(d domain.Donation) int {
	q.appended = append(q.appended, d)
	return len(q.appended)
}

func (q *fakeQueue) PopNext() (domain.Donation, int, bool) { return domain.Donation{}, 0, false }

func (q *fakeQueue) Filter(domain.Status, int) []domain.Donation { return nil }

func (q *fakeQueue) Len() int { return len(q.appended) }

func (q *fakeQueue) Pending() int { return len(q.appended) }

func newTestIngest(allow bool, dedupeErr error) (*Ingest, *fakeQueue, *fakeDeduper) {
	q := &fakeQueue{}
	d := &fakeDeduper{err: dedupeErr}
	s := NewIngest(fakeLimiterStore{allow: allow}, d, q, nil, 999_999_999)
	s.Logger = log.New(io.Discard, "", 0)
	return s, q, d
}

const validBody = `{"id":"d1","amount":5000,"donor_name":"Ana","donor_email":"a@x.com"}`

func TestIngest_Submit_Success(t *testing.T) {
	s, q, d := newTestIngest(true, nil)

	receipt, err := s.Submit(context.Background(), "1.2.3.4", []byte(validBody))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if receipt.DonationID != "d1" || receipt.Position != 1 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if d.gotID != "d1" || d.gotDonor != "a@x.com" {
		t.Fatalf("dedupe saw id=%q donor=%q", d.gotID, d.gotDonor)
	}

	got := q.appended[0]
	if got.Message != domain.DefaultMessage {
		t.Fatalf("expected default message, got %q", got.Message)
	}
	if got.SourceKey != "1.2.3.4" {
		t.Fatalf("expected source key recorded, got %q", got.SourceKey)
	}
	if got.CreatedAt.IsZero() || got.Processed {
		t.Fatalf("expected fresh unprocessed donation, got %+v", got)
	}
}

func TestIngest_Submit_KeepsProvidedMessage(t *testing.T) {
	s, q, _ := newTestIngest(true, nil)

	body := `{"id":"d1","amount":5000,"donor_name":"Ana","donor_email":"a@x.com","message":"obrigado!"}`
	if _, err := s.Submit(context.Background(), "1.2.3.4", []byte(body)); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := q.appended[0].Message; got != "obrigado!" {
		t.Fatalf("expected provided message, got %q", got)
	}
}

func TestIngest_Submit_RateLimited(t *testing.T) {
	s, q, _ := newTestIngest(false, nil)

	_, err := s.Submit(context.Background(), "1.2.3.4", []byte(validBody))
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(q.appended) != 0 {
		t.Fatalf("expected nothing queued after rejection")
	}
}

func TestIngest_Submit_InvalidPayloadShapes(t *testing.T) {
	for _, body := range []string{"", "null", "[]", `"str"`, "not json"} {
		s, _, _ := newTestIngest(true, nil)
		_, err := s.Submit(context.Background(), "1.2.3.4", []byte(body))
		if !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("body %q: expected ErrInvalidPayload, got %v", body, err)
		}
	}
}

func TestIngest_Submit_InvalidData(t *testing.T) {
	cases := []string{
		`{"amount":5000,"donor_name":"Ana","donor_email":"a@x.com"}`,          // sem id
		`{"id":" ","amount":5000,"donor_name":"Ana","donor_email":"a@x.com"}`, // id em branco
		`{"id":"d1","donor_name":"Ana","donor_email":"a@x.com"}`,              // sem amount
		`{"id":"d1","amount":0,"donor_name":"Ana","donor_email":"a@x.com"}`,
		`{"id":"d1","amount":-5,"donor_name":"Ana","donor_email":"a@x.com"}`,
		`{"id":"d1","amount":10.5,"donor_name":"Ana","donor_email":"a@x.com"}`,
		`{"id":"d1","amount":1000000000,"donor_name":"Ana","donor_email":"a@x.com"}`, // acima do teto
		`{"id":"d1","amount":"5000","donor_name":"Ana","donor_email":"a@x.com"}`,     // amount string
		`{"id":"d1","amount":5000,"donor_email":"a@x.com"}`,                          // sem nome
		`{"id":"d1","amount":5000,"donor_name":"Ana"}`,                               // sem e-mail
	}
	for _, body := range cases {
		s, q, _ := newTestIngest(true, nil)
		_, err := s.Submit(context.Background(), "1.2.3.4", []byte(body))
		if !errors.Is(err, domain.ErrInvalidData) {
			t.Fatalf("body %s: expected ErrInvalidData, got %v", body, err)
		}
		if len(q.appended) != 0 {
			t.Fatalf("body %s: expected nothing queued", body)
		}
	}
}

func TestIngest_Submit_AmountAtCeilingIsAccepted(t *testing.T) {
	s, _, _ := newTestIngest(true, nil)

	body := `{"id":"d1","amount":999999999,"donor_name":"Ana","donor_email":"a@x.com"}`
	if _, err := s.Submit(context.Background(), "1.2.3.4", []byte(body)); err != nil {
		t.Fatalf("expected amount at ceiling to pass, got %v", err)
	}
}

func TestIngest_Submit_DedupeErrorsPassThrough(t *testing.T) {
	for _, want := range []error{domain.ErrDuplicate, domain.ErrCooldown} {
		s, q, _ := newTestIngest(true, want)
		_, err := s.Submit(context.Background(), "1.2.3.4", []byte(validBody))
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if len(q.appended) != 0 {
			t.Fatalf("expected nothing queued after %v", want)
		}
	}
}

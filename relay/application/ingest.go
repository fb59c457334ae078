package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"donation-relay/relay/domain"

	"golang.org/x/time/rate"
)

// Receipt é a confirmação devolvida ao webhook.
type Receipt struct {
	DonationID string
	Position   int
}

// Ingest é o caso de uso de ingestão: valida, limita, deduplica e enfileira.
//
// Validação acontece inteira antes de qualquer mutação, então uma requisição
// recusada nunca deixa estado parcial para trás.
type Ingest struct {
	limiter       domain.LimiterStore
	dedupe        domain.Deduper
	queue         domain.Queue
	audit         domain.AuditStore
	amountCeiling int64

	Logger *log.Logger
	now    func() time.Time

	// amostra os logs de recusa: uma origem abusiva não pode inundar o
	// log do processo só de tanto ser bloqueada.
	rejectLog *rate.Limiter
}

func NewIngest(limiter domain.LimiterStore, dedupe domain.Deduper, queue domain.Queue, audit domain.AuditStore, amountCeiling int64) *Ingest {
	return &Ingest{
		limiter:       limiter,
		dedupe:        dedupe,
		queue:         queue,
		audit:         audit,
		amountCeiling: amountCeiling,
		Logger:        log.Default(),
		now:           time.Now,
		rejectLog:     rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Cooldown expõe o intervalo mínimo entre doações do mesmo doador, para a
// resposta de DONOR_FREQUENCY_LIMIT informar quando tentar de novo.
func (s *Ingest) Cooldown() time.Duration { return s.dedupe.Cooldown() }

// Submit roda o pipeline de admissão na ordem do contrato: rate limit da
// origem, forma do payload, campos, dedupe/cooldown. O primeiro erro
// interrompe e vira o código da resposta.
func (s *Ingest) Submit(ctx context.Context, source domain.Key, body []byte) (Receipt, error) {
	if !s.limiter.Get(source).Allow() {
		s.reject(ctx, source, domain.ErrRateLimited)
		return Receipt{}, domain.ErrRateLimited
	}

	p, err := parsePayload(body, s.amountCeiling)
	if err != nil {
		s.reject(ctx, source, err)
		return Receipt{}, err
	}

	if err := s.dedupe.Admit(p.id, p.donorEmail); err != nil {
		s.reject(ctx, source, err)
		return Receipt{}, err
	}

	d := domain.Donation{
		ID:         p.id,
		DonorName:  p.donorName,
		DonorEmail: p.donorEmail,
		Amount:     p.amount,
		Message:    p.message,
		SourceKey:  source,
		CreatedAt:  s.now(),
	}
	pos := s.queue.Append(d)

	s.record(ctx, domain.AuditEvent{
		Kind:   domain.AuditAccepted,
		Key:    source,
		ID:     d.ID,
		Amount: d.Amount,
		At:     d.CreatedAt,
	})
	s.Logger.Printf("donation accepted: id=%s donor=%q amount=%d source=%s position=%d",
		d.ID, d.DonorName, d.Amount, source, pos)

	return Receipt{DonationID: d.ID, Position: pos}, nil
}

func (s *Ingest) reject(ctx context.Context, source domain.Key, err error) {
	code := domain.ReasonCode(err)
	s.record(ctx, domain.AuditEvent{
		Kind:   domain.AuditRejected,
		Key:    source,
		Reason: code,
		At:     s.now(),
	})
	if s.rejectLog.Allow() {
		s.Logger.Printf("donation rejected: source=%s reason=%s", source, code)
	}
}

func (s *Ingest) record(ctx context.Context, ev domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, ev)
}

type payload struct {
	id         string
	donorName  string
	donorEmail string
	amount     int64
	message    string
}

// parsePayload valida o corpo não confiável do webhook. Forma errada vira
// ErrInvalidPayload; campo errado vira ErrInvalidData com detalhe.
func parsePayload(body []byte, ceiling int64) (payload, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return payload{}, domain.ErrInvalidPayload
	}
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return payload{}, domain.ErrInvalidPayload
	}

	var p payload

	p.id, ok = stringField(obj, "id")
	if !ok {
		return payload{}, fmt.Errorf("%w: id is required", domain.ErrInvalidData)
	}
	p.donorName, ok = stringField(obj, "donor_name")
	if !ok {
		return payload{}, fmt.Errorf("%w: donor_name is required", domain.ErrInvalidData)
	}
	p.donorEmail, ok = stringField(obj, "donor_email")
	if !ok {
		return payload{}, fmt.Errorf("%w: donor_email is required", domain.ErrInvalidData)
	}

	n, ok := obj["amount"].(float64)
	if !ok || n != math.Trunc(n) {
		return payload{}, fmt.Errorf("%w: amount must be an integer", domain.ErrInvalidData)
	}
	p.amount = int64(n)
	if p.amount <= 0 {
		return payload{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidData)
	}
	if p.amount > ceiling {
		return payload{}, fmt.Errorf("%w: amount exceeds ceiling", domain.ErrInvalidData)
	}

	if msg, ok := obj["message"].(string); ok && strings.TrimSpace(msg) != "" {
		p.message = msg
	} else {
		p.message = domain.DefaultMessage
	}

	return p, nil
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

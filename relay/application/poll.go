package application

import (
	"context"
	"strings"
	"time"

	"donation-relay/relay/domain"
)

// GameIDPrefix é o prefixo obrigatório dos identificadores de jogo.
const GameIDPrefix = "roblox_"

// gameIDMinLen: prefixo + pelo menos 5 caracteres de identificador.
const gameIDMinLen = len(GameIDPrefix) + 5

// ValidateGameID aplica o formato do contrato: não vazio, prefixo fixo,
// comprimento mínimo.
func ValidateGameID(gameID string) error {
	if gameID == "" || !strings.HasPrefix(gameID, GameIDPrefix) || len(gameID) < gameIDMinLen {
		return domain.ErrInvalidGameID
	}
	return nil
}

// PollResult é a resposta do polling. Donation == nil quando não há pendência.
// QueueSize conta as doações que ainda aguardam entrega.
type PollResult struct {
	Donation  *domain.DisplayDonation
	QueueSize int
}

// Poll é o caso de uso de consumo: entrega a próxima doação pendente, no
// máximo uma vez cada.
type Poll struct {
	limiter domain.LimiterStore
	queue   domain.Queue
	audit   domain.AuditStore
	now     func() time.Time
}

func NewPoll(limiter domain.LimiterStore, queue domain.Queue, audit domain.AuditStore) *Poll {
	return &Poll{
		limiter: limiter,
		queue:   queue,
		audit:   audit,
		now:     time.Now,
	}
}

// Next valida o game id, aplica o rate limit do jogo e tenta puxar a próxima
// doação. Marcar como processada e agendar a remoção acontecem dentro da
// fila, numa única seção crítica — um registro nunca é entregue duas vezes,
// mesmo que continue visível na inspeção durante a janela de exibição.
func (s *Poll) Next(ctx context.Context, gameID string) (PollResult, error) {
	if err := ValidateGameID(gameID); err != nil {
		return PollResult{}, err
	}
	if !s.limiter.Get(domain.Key(gameID)).Allow() {
		return PollResult{}, domain.ErrRateLimited
	}

	d, pending, ok := s.queue.PopNext()
	if !ok {
		return PollResult{QueueSize: s.queue.Pending()}, nil
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, domain.AuditEvent{
			Kind:   domain.AuditServed,
			Key:    domain.Key(gameID),
			Game:   gameID,
			ID:     d.ID,
			Amount: d.Amount,
			At:     s.now(),
		})
	}

	disp := d.Display()
	return PollResult{Donation: &disp, QueueSize: pending}, nil
}

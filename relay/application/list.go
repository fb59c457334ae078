package application

import (
	"strings"

	"donation-relay/relay/domain"
)

const (
	// DefaultListLimit vale quando o cliente não pede um limite.
	DefaultListLimit = 50
	// MaxListLimit é o teto duro, independente do que o cliente pedir.
	MaxListLimit = 100
)

// ListResult é a projeção de inspeção: Total é quantos itens voltaram (pós
// filtro e truncamento), QueueSize é o tamanho físico da fila viva.
type ListResult struct {
	Donations []domain.ListEntry
	Total     int
	QueueSize int
}

// List é o caso de uso de inspeção. Read-only: nada aqui muta a fila além
// da varredura de expirados embutida nas leituras.
type List struct {
	queue domain.Queue
}

func NewList(queue domain.Queue) *List {
	return &List{queue: queue}
}

// Donations exige game_id presente (sem validação de formato, é endpoint de
// inspeção), aceita status all|pending|processed e trunca em limit.
func (s *List) Donations(gameID, status string, limit int) (ListResult, error) {
	if strings.TrimSpace(gameID) == "" {
		return ListResult{}, domain.ErrMissingGameID
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	ds := s.queue.Filter(domain.ParseStatus(status), limit)
	entries := make([]domain.ListEntry, 0, len(ds))
	for _, d := range ds {
		entries = append(entries, d.ListEntry())
	}

	return ListResult{
		Donations: entries,
		Total:     len(entries),
		QueueSize: s.queue.Len(),
	}, nil
}

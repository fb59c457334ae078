package domain

import "time"

// DisplayTimeMS é o tempo de exibição sugerido ao cliente, em milissegundos.
// Valor fixo do protocolo de polling.
const DisplayTimeMS = 8000

// DefaultMessage preenche doações que chegam sem mensagem.
const DefaultMessage = "Thank you for your donation!"

// Donation é o registro vivo na fila.
//
// SourceKey e DonorEmail são dados internos (auditoria e anti-abuso) e nunca
// aparecem nas projeções enviadas ao cliente.
type Donation struct {
	ID          string
	DonorName   string
	DonorEmail  string
	Amount      int64
	Message     string
	SourceKey   Key
	CreatedAt   time.Time
	Processed   bool
	ProcessedAt time.Time
}

// DisplayDonation é a projeção retornada pelo endpoint de polling.
type DisplayDonation struct {
	ID          string `json:"id"`
	DonorName   string `json:"donor_name"`
	Amount      int64  `json:"amount"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	DisplayTime int    `json:"display_time"`
}

func (d Donation) Display() DisplayDonation {
	return DisplayDonation{
		ID:          d.ID,
		DonorName:   d.DonorName,
		Amount:      d.Amount,
		Message:     d.Message,
		Timestamp:   d.CreatedAt.UTC().Format(time.RFC3339),
		DisplayTime: DisplayTimeMS,
	}
}

// ListEntry é a projeção usada pelo endpoint de inspeção. Diferente da
// DisplayDonation, expõe o estado processed para filtragem/diagnóstico.
type ListEntry struct {
	ID        string `json:"id"`
	DonorName string `json:"donor_name"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Processed bool   `json:"processed"`
}

func (d Donation) ListEntry() ListEntry {
	return ListEntry{
		ID:        d.ID,
		DonorName: d.DonorName,
		Amount:    d.Amount,
		Message:   d.Message,
		Timestamp: d.CreatedAt.UTC().Format(time.RFC3339),
		Processed: d.Processed,
	}
}

// Status filtra visões da fila.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
)

// ParseStatus aceita o valor vindo da query string. Vazio ou desconhecido
// caem no padrão "all".
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending:
		return StatusPending
	case StatusProcessed:
		return StatusProcessed
	default:
		return StatusAll
	}
}

// Queue é o contrato da fila compartilhada de doações.
//
// A implementação deve tratar cada operação como seção crítica: quem chama
// nunca precisa de lock externo, e operações compostas (achar + marcar)
// são expostas como um único método justamente para não abrir janela de
// corrida entre checagem e mutação.
type Queue interface {
	// Append adiciona ao fim e retorna a posição na fila viva (1-based).
	Append(d Donation) int
	// PopNext devolve a primeira doação não processada, já marcada como
	// processada, junto com quantas pendentes restam. ok=false quando não
	// há pendência.
	PopNext() (d Donation, pending int, ok bool)
	// Filter devolve uma visão read-only filtrada por status, limitada.
	Filter(st Status, limit int) []Donation
	// Len é o tamanho físico da fila viva (inclui processadas ainda não
	// removidas).
	Len() int
	// Pending conta apenas as não processadas.
	Pending() int
}

// Deduper decide se uma doação pode ser admitida, olhando o id (horizonte de
// dedupe) e o doador (cooldown). Checagem e registro acontecem na mesma
// seção crítica.
type Deduper interface {
	Admit(id, donor string) error
	Cooldown() time.Duration
}

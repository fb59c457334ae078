package relay

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"donation-relay/relay/application"
	"donation-relay/relay/domain"
)

// limite de corpo do webhook; payloads reais têm centenas de bytes.
const maxBodyBytes = 1 << 20

// Server agrupa os casos de uso e expõe os três endpoints da API.
type Server struct {
	Ingest *application.Ingest
	Poll   *application.Poll
	List   *application.List
	KeyFn  KeyFunc
	Logger *log.Logger
}

// Routes monta o mux com todos os handlers embrulhados em recover: um pânico
// em qualquer handler vira 500 logado, nunca derruba o processo.
func (s *Server) Routes() http.Handler {
	if s.KeyFn == nil {
		s.KeyFn = SourceKeyFunc(true)
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/webhook", s.recoverWrap(s.handleWebhook))
	mux.HandleFunc("/api/notify", s.recoverWrap(s.handleNotify))
	mux.HandleFunc("/api/donations", s.recoverWrap(s.handleDonations))
	return mux
}

func (s *Server) recoverWrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.Logger.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeJSON(w, http.StatusInternalServerError, errorBody{
					Status: "error", Code: domain.CodeInternal, Message: "internal error",
				})
			}
		}()
		next(w, r)
	}
}

type webhookSuccess struct {
	Status        string `json:"status"`
	DonationID    string `json:"donation_id"`
	QueuePosition int    `json:"queue_position"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Message:   "donation relay webhook is up",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeAPIError(w, domain.ErrInvalidPayload, 0)
			return
		}

		receipt, err := s.Ingest.Submit(r.Context(), s.KeyFn(r), body)
		if err != nil {
			writeAPIError(w, err, s.Ingest.Cooldown())
			return
		}
		writeJSON(w, http.StatusOK, webhookSuccess{
			Status:        "success",
			DonationID:    receipt.DonationID,
			QueuePosition: receipt.Position,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

type notifyResponse struct {
	Status      string                  `json:"status"`
	HasDonation bool                    `json:"has_donation"`
	Donation    *domain.DisplayDonation `json:"donation,omitempty"`
	QueueSize   int                     `json:"queue_size"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)
	noCache(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		res, err := s.Poll.Next(r.Context(), r.URL.Query().Get("game_id"))
		if err != nil {
			writeAPIError(w, err, 0)
			return
		}
		writeJSON(w, http.StatusOK, notifyResponse{
			Status:      "ok",
			HasDonation: res.Donation != nil,
			Donation:    res.Donation,
			QueueSize:   res.QueueSize,
		})
	default:
		writeMethodNotAllowed(w)
	}
}

type listResponse struct {
	Status    string             `json:"status"`
	Donations []domain.ListEntry `json:"donations"`
	Total     int                `json:"total"`
	QueueSize int                `json:"queue_size"`
}

func (s *Server) handleDonations(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	res, err := s.List.Donations(q.Get("game_id"), q.Get("status"), limit)
	if err != nil {
		writeAPIError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Status:    "ok",
		Donations: res.Donations,
		Total:     res.Total,
		QueueSize: res.QueueSize,
	})
}

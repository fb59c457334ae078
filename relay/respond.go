package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"donation-relay/relay/domain"
)

// corpo padrão de erro da API. DUPLICATE_DONATION usa status "warning":
// reentrega de webhook é esperada e benigna, não é falha do emissor.
type errorBody struct {
	Status            string `json:"status"`
	Code              string `json:"code"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

func applyCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// noCache evita que o cliente de polling receba resposta cacheada: cada
// GET /api/notify tem efeito colateral (marca a doação como processada).
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAPIError traduz os erros sentinela para o contrato: status HTTP,
// código estável e, quando fizer sentido, Retry-After / retry_after_seconds.
// Erros desconhecidos viram 500 sem vazar detalhe.
func writeAPIError(w http.ResponseWriter, err error, cooldown time.Duration) {
	code := domain.ReasonCode(err)

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(1))
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Status: "error", Code: code, Message: err.Error(),
		})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Status: "warning", Code: code, Message: err.Error(),
		})
	case errors.Is(err, domain.ErrCooldown):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Status: "error", Code: code, Message: err.Error(),
			RetryAfterSeconds: int(cooldown.Seconds()),
		})
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrInvalidData),
		errors.Is(err, domain.ErrInvalidGameID),
		errors.Is(err, domain.ErrMissingGameID):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Status: "error", Code: code, Message: err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Status: "error", Code: domain.CodeInternal, Message: "internal error",
		})
	}
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{
		Status: "error", Code: "METHOD_NOT_ALLOWED", Message: "method not allowed",
	})
}

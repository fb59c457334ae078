package domain

import "errors"

// Códigos estáveis expostos pela API. Clientes fazem switch nesses valores,
// então mudanças aqui quebram o contrato.
const (
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeInvalidData    = "INVALID_DATA"
	CodeDuplicate      = "DUPLICATE_DONATION"
	CodeDonorFrequency = "DONOR_FREQUENCY_LIMIT"
	CodeInvalidGameID  = "INVALID_GAME_ID"
	CodeMissingGameID  = "MISSING_GAME_ID"
	CodeInternal       = "INTERNAL_ERROR"
)

// Erros sentinela das camadas de aplicação/infra. O adapter HTTP traduz
// cada um para o código e status correspondentes via errors.Is.
var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrInvalidPayload = errors.New("payload must be a JSON object")
	ErrInvalidData    = errors.New("invalid donation data")
	ErrDuplicate      = errors.New("duplicate donation id")
	ErrCooldown       = errors.New("donor frequency limit")
	ErrInvalidGameID  = errors.New("invalid game id")
	ErrMissingGameID  = errors.New("game_id is required")
)

// ReasonCode traduz um erro sentinela para o código estável correspondente.
// Erros desconhecidos viram INTERNAL_ERROR.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimit
	case errors.Is(err, ErrInvalidPayload):
		return CodeInvalidPayload
	case errors.Is(err, ErrInvalidData):
		return CodeInvalidData
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrCooldown):
		return CodeDonorFrequency
	case errors.Is(err, ErrInvalidGameID):
		return CodeInvalidGameID
	case errors.Is(err, ErrMissingGameID):
		return CodeMissingGameID
	default:
		return CodeInternal
	}
}

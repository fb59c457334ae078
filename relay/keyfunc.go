package relay

import (
	"net"
	"net/http"
	"strings"

	"donation-relay/relay/domain"
)

// KeyFunc extrai a identidade de origem de uma requisição.
type KeyFunc func(r *http.Request) domain.Key

// SourceKeyFunc devolve a KeyFunc padrão: primeiro IP do X-Forwarded-For
// quando o proxy é confiável, senão o host do RemoteAddr.
func SourceKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) domain.Key {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if len(parts) > 0 {
					ip := strings.TrimSpace(parts[0])
					if ip != "" {
						return domain.Key(ip)
					}
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return domain.Key(host)
		}
		if r.RemoteAddr != "" {
			return domain.Key(r.RemoteAddr)
		}
		return "unknown"
	}
}

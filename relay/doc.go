// Package relay fornece o adapter HTTP (net/http) do relay de doações.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (ingestão, polling, inspeção) sem net/http
//   - infra: implementações concretas (fila, janela deslizante, dedupe,
//     auditoria em memória/redis)
//   - relay (este pacote): handlers HTTP + extração de origem + tradução de
//     erros para status/códigos + CORS/cache/concorrência
//
// Fluxo:
//
//  1. POST /api/webhook — valida, limita, deduplica e enfileira a doação
//  2. GET /api/notify — o cliente do jogo puxa a próxima doação pendente
//  3. GET /api/donations — inspeção read-only da fila
//
// Variáveis de ambiente do binário (cmd/relay) controlam limites e TTLs,
// como INGEST_RATE_MAX, POLL_RATE_MAX, DONOR_COOLDOWN e QUEUE_TTL.
package relay

// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - WindowStore: janela deslizante exata por chave
//   - DedupeTracker: conjunto "já visto" com horizonte + cooldown por doador
//   - Queue: fila de doações em memória com expiração varrida
//   - MemoryAuditStore / RedisAuditStore: trilha de auditoria
package infra

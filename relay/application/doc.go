// Package application contém os casos de uso do relay: ingestão de doações
// via webhook, entrega via polling e inspeção da fila.
//
// Ele depende apenas do pacote domain e não conhece net/http. O adapter HTTP
// traduz os erros sentinela devolvidos aqui para status/códigos da API.
package application

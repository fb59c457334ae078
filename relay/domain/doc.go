// Package domain define contratos e tipos de domínio do relay de doações.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (fila em memória, redis, etc).
package domain

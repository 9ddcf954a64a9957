package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Pool exposes the pool so tests can reset the schema.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

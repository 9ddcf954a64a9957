// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool.
//
// Every method is a single statement, so each mutation is committed
// atomically by PostgreSQL itself without an explicit transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id        BIGSERIAL PRIMARY KEY,
		firstname TEXT    NOT NULL,
		lastname  TEXT    NOT NULL,
		age       INTEGER NOT NULL,
		grade     INTEGER NOT NULL
	)
`

const returningColumns = "id, firstname, lastname, age, grade"

// Postgres is a storage.Storage backed by a pgxpool.Pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to cfg.Storage.DSN, verifies the connection and creates the
// students table if it does not exist.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("postgres.New: context cancelled: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// CreateStudent inserts a row and returns it with the id PostgreSQL assigned.
func (p *Postgres) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	row := p.pool.QueryRow(ctx,
		"INSERT INTO students (firstname, lastname, age, grade) VALUES ($1, $2, $3, $4) RETURNING "+returningColumns,
		student.Firstname, student.Lastname, student.Age, student.Grade,
	)

	created, err := scanStudent(row)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	return created, nil
}

// GetStudentByID fetches one student by primary key.
func (p *Postgres) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	row := p.pool.QueryRow(ctx, "SELECT "+returningColumns+" FROM students WHERE id = $1", id)

	student, err := scanStudent(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return types.Student{}, storage.ErrNotFound
	case err != nil:
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return student, nil
}

// GetStudents returns every student ordered by id.
func (p *Postgres) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+returningColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("GetStudents: collect: %w", err)
	}

	if students == nil {
		students = make([]types.Student, 0)
	}
	return students, nil
}

// UpdateStudentByID overwrites the non-nil patch fields and returns the
// updated row in the same statement.
func (p *Postgres) UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) (types.Student, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE students SET
			firstname = COALESCE($1, firstname),
			lastname  = COALESCE($2, lastname),
			age       = COALESCE($3, age),
			grade     = COALESCE($4, grade)
		WHERE id = $5
		RETURNING `+returningColumns,
		patch.Firstname, patch.Lastname, patch.Age, patch.Grade, id,
	)

	student, err := scanStudent(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return types.Student{}, storage.ErrNotFound
	case err != nil:
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}
	return student, nil
}

// DeleteStudentByID removes a student by primary key.
func (p *Postgres) DeleteStudentByID(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Ping checks that a pooled connection can reach the server.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool. It always returns nil; the error is there to
// satisfy storage.Storage.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanStudent(row pgx.Row) (types.Student, error) {
	var student types.Student
	err := row.Scan(&student.ID, &student.Firstname, &student.Lastname, &student.Age, &student.Grade)
	return student, err
}

// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the SQLite and PostgreSQL
// backends are interchangeable and tests can pass a fake.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrNotFound is returned when no student has the requested id.
// It is a normal result, not a fault; match it with errors.Is.
var ErrNotFound = errors.New("student not found")

// Storage is the database contract.
//
// Every mutating method commits exactly once before returning; a failure
// before the commit leaves the stored data unchanged.
type Storage interface {
	// CreateStudent inserts a new record and returns it with the id the
	// database assigned. Any id already set on student is ignored.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if there is none.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID overwrites the non-nil fields of patch and returns
	// the updated record. Returns ErrNotFound, without writing, if there is
	// no such student.
	UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) (types.Student, error)

	// DeleteStudentByID removes a student permanently.
	// Returns ErrNotFound if there is no such student.
	DeleteStudentByID(ctx context.Context, id int64) error

	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

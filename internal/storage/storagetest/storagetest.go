// Package storagetest holds behaviour tests every storage.Storage backend
// must pass. Backends call Run from their own _test.go files.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Storage

// Run executes the shared suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"EmptyListIsNotNil", testEmptyList},
		{"CreateAssignsUniqueIDs", testCreateAssignsUniqueIDs},
		{"CreateIgnoresCallerID", testCreateIgnoresCallerID},
		{"GetReturnsCreatedRecord", testGetReturnsCreated},
		{"ListInInsertionOrder", testListOrder},
		{"EmptyPatchLeavesRecordUnchanged", testEmptyPatch},
		{"PatchOnlyTouchesGivenFields", testPatchGrade},
		{"PatchAllFields", testPatchAll},
		{"DeleteThenGetIsNotFound", testDeleteThenGet},
		{"UnknownIDIsNotFound", testUnknownID},
		{"DeletedIDIsNotReused", testDeletedIDNotReused},
		{"Ping", testPing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			tc.fn(t, s)
		})
	}
}

func sample(firstname string) types.Student {
	return types.Student{Firstname: firstname, Lastname: "Valiyev", Age: 20, Grade: 3}
}

func testEmptyList(t *testing.T, s storage.Storage) {
	students, err := s.GetStudents(context.Background())
	require.NoError(t, err)
	require.NotNil(t, students)
	require.Empty(t, students)
}

func testCreateAssignsUniqueIDs(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	seen := make(map[int64]bool)

	for _, name := range []string{"Ali", "Vali", "Sardor", "Madina"} {
		created, err := s.CreateStudent(ctx, sample(name))
		require.NoError(t, err)
		require.Positive(t, created.ID)
		require.False(t, seen[created.ID], "id %d assigned twice", created.ID)
		seen[created.ID] = true
	}
}

func testCreateIgnoresCallerID(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	in := sample("Ali")
	in.ID = 4242

	created, err := s.CreateStudent(ctx, in)
	require.NoError(t, err)
	require.NotEqual(t, int64(4242), created.ID)
}

func testGetReturnsCreated(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, types.Student{Firstname: "Ali", Lastname: "Valiyev", Age: 0, Grade: 0})
	require.NoError(t, err)

	got, err := s.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func testListOrder(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)
	second, err := s.CreateStudent(ctx, sample("Vali"))
	require.NoError(t, err)

	students, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Equal(t, []types.Student{first, second}, students)
}

func testEmptyPatch(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)

	updated, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{})
	require.NoError(t, err)
	require.Equal(t, created, updated)

	got, err := s.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func testPatchGrade(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)

	grade := 9
	updated, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Grade: &grade})
	require.NoError(t, err)

	want := created
	want.Grade = 9
	require.Equal(t, want, updated)

	got, err := s.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func testPatchAll(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)

	first, last, age, grade := "Vali", "Aliyev", 0, 11
	updated, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{
		Firstname: &first,
		Lastname:  &last,
		Age:       &age,
		Grade:     &grade,
	})
	require.NoError(t, err)
	require.Equal(t, types.Student{ID: created.ID, Firstname: "Vali", Lastname: "Aliyev", Age: 0, Grade: 11}, updated)
}

func testDeleteThenGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteStudentByID(ctx, created.ID))

	_, err = s.GetStudentByID(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, s.DeleteStudentByID(ctx, created.ID), storage.ErrNotFound)

	grade := 1
	_, err = s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Grade: &grade})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testUnknownID(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.GetStudentByID(ctx, 9999)
	require.ErrorIs(t, err, storage.ErrNotFound)

	age := 30
	_, err = s.UpdateStudentByID(ctx, 9999, types.StudentPatch{Age: &age})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, s.DeleteStudentByID(ctx, 9999), storage.ErrNotFound)

	students, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Empty(t, students, "a not-found update must not write")
}

func testDeletedIDNotReused(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.CreateStudent(ctx, sample("Ali"))
	require.NoError(t, err)
	require.NoError(t, s.DeleteStudentByID(ctx, first.ID))

	second, err := s.CreateStudent(ctx, sample("Vali"))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func testPing(t *testing.T, s storage.Storage) {
	require.NoError(t, s.Ping(context.Background()))
}

// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Student represents a persisted student record.
//
// ID is assigned by the storage layer at creation time and never changes
// afterwards. The JSON shape is exactly these five keys.
type Student struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
	Grade     int    `json:"grade"`
}

// CreateStudentRequest is the body of POST /api/students.
//
// Every field is a pointer so that "key missing" (nil) can be told apart
// from a zero value such as an age of 0. For pointer fields the
// go-playground/validator "required" tag only checks that the pointer is
// non-nil, which is exactly a presence check.
//
// Field order matters: validation errors are reported in declaration
// order and the handler surfaces only the first one.
type CreateStudentRequest struct {
	Firstname *string `json:"firstname" validate:"required"`
	Lastname  *string `json:"lastname"  validate:"required"`
	Age       *int    `json:"age"       validate:"required"`
	Grade     *int    `json:"grade"     validate:"required"`
}

// Student converts a validated request into a record ready to be stored.
//
// It panics if any field is nil. Callers must validate first; getting here
// with a missing field is a bug, not bad input.
func (r CreateStudentRequest) Student() Student {
	if r.Firstname == nil || r.Lastname == nil || r.Age == nil || r.Grade == nil {
		panic("types: CreateStudentRequest.Student called with a missing required field")
	}

	return Student{
		Firstname: *r.Firstname,
		Lastname:  *r.Lastname,
		Age:       *r.Age,
		Grade:     *r.Grade,
	}
}

// UpdateStudentRequest is the body of PUT /api/students/{id}.
// Any subset of the fields may be sent.
type UpdateStudentRequest struct {
	Firstname Optional[string] `json:"firstname"`
	Lastname  Optional[string] `json:"lastname"`
	Age       Optional[int]    `json:"age"`
	Grade     Optional[int]    `json:"grade"`
}

// NullField returns the JSON name of the first field that was sent as an
// explicit null, or "" if there is none. Checked in the order firstname,
// lastname, age, grade.
func (r UpdateStudentRequest) NullField() string {
	switch {
	case r.Firstname.Null:
		return "firstname"
	case r.Lastname.Null:
		return "lastname"
	case r.Age.Null:
		return "age"
	case r.Grade.Null:
		return "grade"
	}
	return ""
}

// Patch converts the request into a storage-level partial update.
// Absent and null fields both map to nil (untouched); reject nulls with
// NullField before calling this if they should be an error.
func (r UpdateStudentRequest) Patch() StudentPatch {
	return StudentPatch{
		Firstname: r.Firstname.Ptr(),
		Lastname:  r.Lastname.Ptr(),
		Age:       r.Age.Ptr(),
		Grade:     r.Grade.Ptr(),
	}
}

// StudentPatch is a partial update understood by the storage layer.
// A nil field is left untouched; a non-nil field overwrites the stored value.
type StudentPatch struct {
	Firstname *string
	Lastname  *string
	Age       *int
	Grade     *int
}

// Apply returns s with every non-nil patch field written over it.
// The stores apply patches in SQL; Apply gives in-memory test fakes the
// same semantics.
func (p StudentPatch) Apply(s Student) Student {
	if p.Firstname != nil {
		s.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		s.Lastname = *p.Lastname
	}
	if p.Age != nil {
		s.Age = *p.Age
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
	return s
}

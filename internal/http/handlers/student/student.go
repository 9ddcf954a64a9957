// Package student contains all HTTP handlers related to the Student resource.
//
// Each exported function is a factory: it receives its dependencies once
// at route registration and returns the http.HandlerFunc that runs on
// every request.
//
//	router.HandleFunc("POST /api/students", student.New(storage))
//
// Handlers log through the request-scoped zerolog logger placed in the
// context by the request id middleware.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// maxBodyBytes caps request bodies; a student record is a few dozen bytes.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// validate is shared by all requests; *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

// newValidator reports fields by their JSON name ("lastname") instead of
// the Go field name ("Lastname").
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "firstname": "Ali", "lastname": "Valiyev", "age": 20, "grade": 3 }
//
// 201 with the created record, or 400 naming the first missing field
// (checked in the order firstname, lastname, age, grade).
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		log.Debug().Msg("creating a student")

		var req types.CreateStudentRequest
		if err := decodeBody(w, r, &req); err != nil {
			log.Debug().Err(err).Msg("rejected create payload")
			writeBodyError(w, err)
			return
		}

		// Presence of every required field is checked before the store is
		// touched at all.
		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if !errors.As(err, &validateErrs) {
				writeInternalError(w, log, err, "validator failed")
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return
		}

		created, err := store.CreateStudent(r.Context(), req.Student())
		if err != nil {
			writeInternalError(w, log, err, "error creating student")
			return
		}

		log.Info().Int64("id", created.ID).Msg("student created")
		response.WriteJSON(w, http.StatusCreated, response.Message("new student added", created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// 200 with the record, 404 if the id is unknown or not an integer.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			NotFound(w, r)
			return
		}

		log := zerolog.Ctx(r.Context()).With().Int64("id", id).Logger()
		log.Debug().Msg("getting a student")

		student, err := store.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, &log, err, "error getting student")
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// Always 200; an empty store yields { "count": 0, "data": [] }.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		log.Debug().Msg("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			writeInternalError(w, log, err, "error getting students")
			return
		}

		response.WriteJSON(w, http.StatusOK, response.List(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
//
// The body may contain any subset of firstname, lastname, age, grade; the
// rest keep their stored values. An explicit null is rejected with 400
// rather than clearing the field.
//
// 200 with the updated record, 404 if the id is unknown or not an integer.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			NotFound(w, r)
			return
		}

		log := zerolog.Ctx(r.Context()).With().Int64("id", id).Logger()
		log.Debug().Msg("updating a student")

		var req types.UpdateStudentRequest
		if err := decodeBody(w, r, &req); err != nil {
			log.Debug().Err(err).Msg("rejected update payload")
			writeBodyError(w, err)
			return
		}

		if field := req.NullField(); field != "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Error(fmt.Sprintf("'%s' field cannot be null", field)))
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, req.Patch())
		if err != nil {
			writeStoreError(w, &log, err, "error updating student")
			return
		}

		log.Info().Msg("student updated")
		response.WriteJSON(w, http.StatusOK, response.Message("student updated", updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// 200 with a message naming the id, 404 if the id is unknown or not an
// integer.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			NotFound(w, r)
			return
		}

		log := zerolog.Ctx(r.Context()).With().Int64("id", id).Logger()
		log.Debug().Msg("deleting a student")

		if err := store.DeleteStudentByID(r.Context(), id); err != nil {
			writeStoreError(w, &log, err, "error deleting student")
			return
		}

		log.Info().Msg("student deleted")
		response.WriteJSON(w, http.StatusOK,
			response.Message(fmt.Sprintf("student %d deleted", id), nil))
	}
}

// NotFound is the generic routing 404, used for unmatched paths and for
// {id} segments that are not integers.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusNotFound, response.Error(response.MsgPageNotFound))
}

// pathID parses {id} as a non-negative decimal integer. Signs, spaces and
// anything else strconv would accept beyond plain digits are refused.
func pathID(r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, false
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Out of int64 range: cannot name any stored record.
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errEmptyBody) {
		response.WriteJSON(w, http.StatusBadRequest, response.Error(errEmptyBody.Error()))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.Error(response.MsgInvalidBody))
}

// writeStoreError maps storage.ErrNotFound to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, log *zerolog.Logger, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.Error(response.MsgStudentNotFound))
		return
	}
	writeInternalError(w, log, err, msg)
}

// writeInternalError logs err and answers with the generic 500 envelope;
// the error text never reaches the client.
func writeInternalError(w http.ResponseWriter, log *zerolog.Logger, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	response.WriteJSON(w, http.StatusInternalServerError, response.Error(response.MsgInternalError))
}

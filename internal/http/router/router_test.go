package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/router"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records/internal/types"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func newStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := sqlite.New(&config.Config{Storage: config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "students.db"),
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newServer(t *testing.T, store storage.Storage, opts router.Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(router.New(store, zerolog.New(io.Discard), opts))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func decodeStudent(t *testing.T, env envelope) types.Student {
	t.Helper()
	var s types.Student
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func create(t *testing.T, srv *httptest.Server) types.Student {
	t.Helper()
	resp, env := do(t, srv, http.MethodPost, "/api/students", `{"firstname":"Ali","lastname":"Valiyev","age":20,"grade":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeStudent(t, env)
}

func TestScenarioCreate(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	resp, env := do(t, srv, http.MethodPost, "/api/students", `{"firstname":"Ali","lastname":"Valiyev","age":20,"grade":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "success", env.Status)
	require.NotEmpty(t, env.Message)

	created := decodeStudent(t, env)
	require.Positive(t, created.ID)
	require.Equal(t, "Ali", created.Firstname)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	require.ElementsMatch(t, []string{"id", "firstname", "lastname", "age", "grade"}, keys(raw))

	second := create(t, srv)
	require.NotEqual(t, created.ID, second.ID)

	resp, env = do(t, srv, http.MethodGet, fmt.Sprintf("/api/students/%d", created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, created, decodeStudent(t, env))
}

func TestScenarioMissingField(t *testing.T) {
	store := newStore(t)
	srv := newServer(t, store, router.Options{})

	resp, env := do(t, srv, http.MethodPost, "/api/students", `{"firstname":"Ali"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "error", env.Status)
	require.Contains(t, env.Message, "lastname")
	require.NotContains(t, env.Message, "age")
	require.Empty(t, env.Data)

	students, err := store.GetStudents(context.Background())
	require.NoError(t, err)
	require.Empty(t, students)
}

func TestScenarioUnknownID(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		body := ""
		if method == http.MethodPut {
			body = `{"age":30}`
		}
		resp, env := do(t, srv, method, "/api/students/9999", body)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		require.Equal(t, "error", env.Status)
		require.Equal(t, "student not found", env.Message)
	}
}

func TestScenarioPartialUpdate(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})
	created := create(t, srv)

	resp, env := do(t, srv, http.MethodPut, fmt.Sprintf("/api/students/%d", created.ID), `{"age":21}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)

	want := created
	want.Age = 21
	require.Equal(t, want, decodeStudent(t, env))

	resp, env = do(t, srv, http.MethodPut, fmt.Sprintf("/api/students/%d", created.ID), `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, want, decodeStudent(t, env))
}

func TestScenarioDeleteThenGet(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})
	created := create(t, srv)
	path := fmt.Sprintf("/api/students/%d", created.ID)

	resp, env := do(t, srv, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, env.Message, fmt.Sprint(created.ID))

	resp, env = do(t, srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "error", env.Status)

	resp, _ = do(t, srv, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenarioEmptyList(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	resp, env := do(t, srv, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Count)
	require.Zero(t, *env.Count)
	require.JSONEq(t, `[]`, string(env.Data))

	create(t, srv)
	create(t, srv)

	_, env = do(t, srv, http.MethodGet, "/api/students", "")
	require.Equal(t, 2, *env.Count)
}

func TestUnmatchedRoutesReturnEnvelope404(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	cases := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/api/teachers"},
		{http.MethodGet, "/api/students/abc"},
		{http.MethodGet, "/api/students/1/grades"},
		{http.MethodPatch, "/api/students/1"},
		{http.MethodDelete, "/api/students"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, env := do(t, srv, tc.method, tc.path, "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.Equal(t, "error", env.Status)
			require.Equal(t, "page not found", env.Message)
			require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

// panicStore blows up on every list call.
type panicStore struct{ storage.Storage }

func (panicStore) GetStudents(context.Context) ([]types.Student, error) {
	panic("corrupt page")
}

func TestPanicBecomes500Envelope(t *testing.T) {
	srv := newServer(t, panicStore{Storage: newStore(t)}, router.Options{})

	resp, env := do(t, srv, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "error", env.Status)
	require.Equal(t, "internal server error", env.Message)
	require.Empty(t, env.Data)
}

func TestPanicCountedUnderItsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newServer(t, panicStore{Storage: newStore(t)}, router.Options{Registry: reg})

	resp, _ := do(t, srv, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/api/teachers", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	expected := `
# HELP students_http_errors_total Total number of error responses (status >= 400).
# TYPE students_http_errors_total counter
students_http_errors_total{method="GET",route="/",status="404"} 1
students_http_errors_total{method="GET",route="GET /api/students",status="500"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "students_http_errors_total"))
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/students", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp, _ = do(t, srv, http.MethodGet, "/api/students", "")
	require.Len(t, resp.Header.Get("X-Request-ID"), 36)
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	resp, env := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := newServer(t, newStore(t), router.Options{MetricsPath: "/metrics", Registry: reg})

	do(t, srv, http.MethodGet, "/api/students", "")
	do(t, srv, http.MethodGet, "/api/students/9999", "")

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	require.Contains(t, text, `students_http_requests_total{method="GET",route="GET /api/students",status="200"} 1`)
	require.Contains(t, text, `students_http_errors_total{method="GET",route="GET /api/students/{id}",status="404"} 1`)
}

func TestMetricsDisabledByDefault(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{})

	resp, env := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "page not found", env.Message)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, newStore(t), router.Options{CORSOrigins: []string{"https://school.example"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/students", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://school.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "https://school.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: sqlite
  path: /tmp/students.db
http_server:
  address: 0.0.0.0:8082
  read_timeout: 3s
  cors_origins: ["https://example.com"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, config.EnvProd, cfg.Env)
	require.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "/tmp/students.db", cfg.Storage.Path)
	require.Equal(t, "0.0.0.0:8082", cfg.HTTPServer.Addr)
	require.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	require.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	require.Equal(t, []string{"https://example.com"}, cfg.HTTPServer.CORSOrigins)
	require.Equal(t, "/metrics", cfg.HTTPServer.MetricsPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
env: dev
storage:
  path: file.db
`)
	t.Setenv("STORAGE_PATH", "from-env.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env.db", cfg.Storage.Path)
}

func TestLoadEnvOnlyUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, config.EnvDev, cfg.Env)
	require.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "students.db", cfg.Storage.Path)
	require.Equal(t, "localhost:5000", cfg.HTTPServer.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "does not exist")
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			Env:        config.EnvDev,
			Storage:    config.Storage{Driver: config.DriverSQLite, Path: "students.db"},
			HTTPServer: config.HTTPServer{Addr: ":5000"},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid sqlite", mutate: func(*config.Config) {}},
		{name: "unknown env", mutate: func(c *config.Config) { c.Env = "qa" }, wantErr: "unknown env"},
		{name: "unknown driver", mutate: func(c *config.Config) { c.Storage.Driver = "mysql" }, wantErr: "unknown storage driver"},
		{name: "postgres without dsn", mutate: func(c *config.Config) { c.Storage.Driver = config.DriverPostgres }, wantErr: "storage.dsn"},
		{name: "postgres with dsn", mutate: func(c *config.Config) {
			c.Storage.Driver = config.DriverPostgres
			c.Storage.DSN = "postgres://localhost/students"
		}},
		{name: "missing address", mutate: func(c *config.Config) { c.HTTPServer.Addr = "" }, wantErr: "http_server.address"},
		{name: "relative metrics path", mutate: func(c *config.Config) { c.HTTPServer.MetricsPath = "metrics" }, wantErr: "must start with /"},
		{name: "metrics disabled", mutate: func(c *config.Config) { c.HTTPServer.MetricsPath = "" }},
		{name: "custom metrics path", mutate: func(c *config.Config) { c.HTTPServer.MetricsPath = "/internal/metrics" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-product-details/config"
)

const productBody = `{
  "id": 16,
  "image_url": "https://assets.example.com/16.png",
  "title": "Wide Bowknot Hat",
  "brand": "MAJIK",
  "price": 288,
  "rating": 3.6,
  "availability": "In Stock",
  "description": "A hat.",
  "style": "Casual",
  "total_reviews": 879,
  "similar_products": [
    {"id": 7, "image_url": "https://assets.example.com/7.png", "title": "Sunhat", "brand": "MAJIK", "price": 199, "rating": 4.1}
  ]
}`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvBaseURL, config.EnvTimeout, config.EnvToken, config.EnvMetricsAddr, config.EnvCacheSize} {
		t.Setenv(key, "")
	}
}

func catalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmdRequiresProductID(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "--plain")
	require.Error(t, err)
}

func TestPlainModeRendersProduct(t *testing.T) {
	clearEnv(t)
	srv := catalogServer(t, http.StatusOK, productBody)

	out, err := execute(t, "16", "--plain", "--base-url", srv.URL, "--token", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Wide Bowknot Hat")
	assert.Contains(t, out, "Similar Products")
	assert.Contains(t, out, "Sunhat")
}

func TestPlainModeNotFoundExitsWithFailureCode(t *testing.T) {
	clearEnv(t)
	srv := catalogServer(t, http.StatusNotFound, `{"error_msg":"not found"}`)

	out, err := execute(t, "99", "--plain", "--base-url", srv.URL, "--token", "secret")
	require.Error(t, err)

	var exit exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, exitFailure, exit.code)
	assert.Contains(t, out, "Product Not Found")
}

func TestPlainModeServerErrorShowsReason(t *testing.T) {
	clearEnv(t)
	srv := catalogServer(t, http.StatusInternalServerError, `oops`)

	out, err := execute(t, "16", "--plain", "--base-url", srv.URL, "--token", "secret")
	var exit exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, exitFailure, exit.code)
	assert.Contains(t, out, "Something Went Wrong")
	assert.Contains(t, out, "unexpected_status")
}

func TestPlainModeExportsSnapshot(t *testing.T) {
	clearEnv(t)
	srv := catalogServer(t, http.StatusOK, productBody)
	csvPath := filepath.Join(t.TempDir(), "out", "product.csv")

	_, err := execute(t, "16", "--plain", "--base-url", srv.URL, "--token", "secret",
		"--export", csvPath, "--format", "dual")
	require.NoError(t, err)

	for _, name := range []string{csvPath, filepath.Join(filepath.Dir(csvPath), "product.json")} {
		info, statErr := os.Stat(name)
		require.NoError(t, statErr)
		assert.Positive(t, info.Size())
	}
}

func TestMissingTokenIsConfigError(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "16", "--plain")

	var exit exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, exitConfig, exit.code)
}

func TestInvalidConfigIsConfigError(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "16", "--plain", "--format", "xml", "--token", "secret")

	var exit exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, exitConfig, exit.code)
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://file.example.com\ntimeout: 3s\ncache_size: 16\n"), 0o600))
	t.Setenv(config.EnvTimeout, "4s")
	t.Setenv(config.EnvToken, "env-token")

	var flags flagValues
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--cache-size", "32"}))
	flags.configPath, _ = cmd.Flags().GetString("config")
	flags.cacheSize, _ = cmd.Flags().GetInt("cache-size")

	cfg, err := loadConfig(cmd, &flags)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, 32, cfg.CacheSize)
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a config file pointing at baseURL with no delays
func writeConfig(t *testing.T, baseURL, outputDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`site:
  base_url: %s
fetcher:
  request_delay: 0s
  retry_delay: 1ms
  respect_robots: false
output:
  base_directory: %s
logging:
  level: error
  file: ""
`, baseURL, outputDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	mux := http.NewServeMux()
	mux.HandleFunc("/catalog/chip-tuning", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="col-md-10"><div class="row"><a href="/catalog/chip-tuning/seat"><p>Seat</p></a></div></div>`)
	})
	mux.HandleFunc("/catalog/chip-tuning/seat", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="col-md-10"><div class="row"><a href="/catalog/chip-tuning/seat/leon"><p>Leon</p></a></div></div>`)
	})
	mux.HandleFunc("/catalog/chip-tuning/seat/leon", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<span class="breadcrump__active">Leon</span><div class="product"><img src="/img/leon.png"></div>`)
	})
	mux.HandleFunc("/img/leon.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(img.Bytes())
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestExecuteScrapes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := catalogServer(t)
	output := t.TempDir()
	cfgPath := writeConfig(t, server.URL, output)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--config", cfgPath}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.FileExists(t, filepath.Join(output, "output.xlsx"))
	assert.FileExists(t, filepath.Join(output, "Seat", "Leon.png"))
}

func TestExecuteFatalWhenSiteUnreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := httptest.NewServer(http.NotFoundHandler())
	cfgPath := writeConfig(t, server.URL, t.TempDir())
	server.Close()

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--config", cfgPath}, &stdout, &stderr)

	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr.String(), "category index")
}

func TestExecuteInterrupted(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := catalogServer(t)
	cfgPath := writeConfig(t, server.URL, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := execute(ctx, []string{"--config", cfgPath}, &stdout, &stderr)

	assert.Equal(t, exitInterrupted, code)
	assert.Contains(t, stderr.String(), "Run again to resume")
}

func TestExecuteRejectsArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"seat"}, &stdout, &stderr)
	assert.Equal(t, exitFatal, code)
}

func TestConfigShowAndInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tuniscraper.yaml")

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, execute(context.Background(), []string{"config", "init", "--config", path}, &stdout, &stderr), stderr.String())
	assert.FileExists(t, path)

	stdout.Reset()
	require.Equal(t, exitOK, execute(context.Background(), []string{"config", "show", "--config", path}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "base_url: https://www.tunisport.es")
	assert.Contains(t, stdout.String(), "grid: div.col-md-10 div.row a")

	assert.Equal(t, exitFatal, execute(context.Background(), []string{"config", "init", "--config", path}, &stdout, &stderr))
}

func TestConfigValidateListsProblems(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetcher:\n  max_attempts: 0\noutput:\n  workbook_name: out.csv\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"config", "validate", "--config", path}, &stdout, &stderr)

	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr.String(), "max attempts must be positive")
	assert.Contains(t, stderr.String(), "workbook name must end in .xlsx")
}

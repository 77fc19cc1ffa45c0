package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// newTitleSite 模拟 title 页面站点：只有 tt0111161 存在。
func newTitleSite(t *testing.T) *httptest.Server {
	t.Helper()
	movie, err := os.ReadFile(filepath.Join("testdata", "movie.html"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/title/tt0111161" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(movie)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runWith(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runCLI(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGet_SingleIDPrintsRecordJSON(t *testing.T) {
	site := newTitleSite(t)

	code, stdout, stderr := runWith(t, "--base-url", site.URL+"/title/", "get", "tt0111161")
	require.Equal(t, 0, code, "stderr=%s", stderr)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec), "stdout=%q", stdout)
	assert.Equal(t, "tt0111161", rec["id"])
	assert.Equal(t, "The Shawshank Redemption", rec["title"])
	assert.Equal(t, "https://www.imdb.com/title/tt0111161", rec["imdb"])
	assert.Nil(t, rec["error"])
}

func TestGet_MissingTitleExitsNonZero(t *testing.T) {
	site := newTitleSite(t)

	code, stdout, _ := runWith(t, "--base-url", site.URL+"/title/", "--retry-max", "0", "get", "tt404")
	assert.Equal(t, 1, code)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.Equal(t, true, rec["error"])
	assert.Contains(t, rec["message"], "404")
}

func TestGet_ManyIDsPrintsYAMLReport(t *testing.T) {
	site := newTitleSite(t)

	code, stdout, stderr := runWith(t, "--base-url", site.URL+"/title/", "get", "-f", "yaml", "-c", "2", "tt404", "tt0111161")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "完成：ok=1 failed=1")

	var rr struct {
		Summary struct {
			OK     int `yaml:"ok"`
			Failed int `yaml:"failed"`
		} `yaml:"summary"`
		Items []map[string]any `yaml:"items"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &rr), "stdout=%q", stdout)
	assert.Equal(t, 1, rr.Summary.OK)
	assert.Equal(t, 1, rr.Summary.Failed)
	require.Len(t, rr.Items, 2)
	assert.Equal(t, "tt0111161", rr.Items[0]["id"])
	assert.Equal(t, "tt404", rr.Items[1]["id"])
}

func TestGet_OutRefusesOverwriteWithoutForce(t *testing.T) {
	site := newTitleSite(t)
	out := filepath.Join(t.TempDir(), "shawshank.json")

	code, stdout, stderr := runWith(t, "--base-url", site.URL+"/title/", "get", "--out", out, "tt0111161")
	require.Equal(t, 0, code, "stderr=%s", stderr)
	assert.Empty(t, stdout, "--out 时 stdout 不应有输出")
	first, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(first), "{"))

	require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))
	code, _, stderr = runWith(t, "--base-url", site.URL+"/title/", "get", "--out", out, "tt0111161")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--force")
	b, _ := os.ReadFile(out)
	assert.Equal(t, "keep", string(b))

	code, _, _ = runWith(t, "--base-url", site.URL+"/title/", "get", "--out", out, "--force", "tt0111161")
	assert.Equal(t, 0, code)
	b, _ = os.ReadFile(out)
	assert.Equal(t, string(first), string(b))
}

func TestGet_InvalidIDDoesNotFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	code, stdout, _ := runWith(t, "--base-url", srv.URL+"/title/", "get", "tt1/../x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `"error": true`)
	assert.Equal(t, 0, hits)
}

func TestCLI_UsageErrors(t *testing.T) {
	code, _, _ := runWith(t)
	assert.Equal(t, 2, code, "缺少子命令")

	code, _, _ = runWith(t, "get")
	assert.Equal(t, 2, code, "缺少 id")

	code, _, _ = runWith(t, "get", "--nope", "tt1")
	assert.Equal(t, 2, code, "未知参数")

	code, stdout, _ := runWith(t, "get", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "--out")
}

func TestCLI_ConfigErrorExitsOne(t *testing.T) {
	code, _, stderr := runWith(t, "--log-level", "loud", "get", "tt1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "config_invalid")

	code, _, stderr = runWith(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "get", "tt1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "config_not_found")
}

func TestEncode_YAMLUsesJSONKeys(t *testing.T) {
	type seasonRef struct {
		APIPath string `json:"api_path"`
	}
	b, err := encode(map[string]any{"all_seasons": []seasonRef{{APIPath: "/title/tt1/season/1"}}}, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(b), "api_path: /title/tt1/season/1")
}

package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/testutil/records"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves a fixed CorpX statement in a single page.
type fakeProvider struct {
	records []model.RawRecord
	calls   atomic.Int32
	syncs   atomic.Int32
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var body map[string]any
	switch r.URL.Path {
	case "/transactions":
		p.calls.Add(1)
		body = map[string]any{
			"success": true,
			"data":    p.records,
			"pagination": map[string]any{
				"total": len(p.records), "limit": len(p.records), "offset": 0,
				"has_more": false, "current_page": 1, "total_pages": 1,
			},
		}
	case "/transactions/verify":
		code := r.URL.Query().Get("endToEnd")
		for _, rec := range p.records {
			if rec.String("endToEnd") == code {
				body = map[string]any{"success": true, "data": rec}
			}
		}
		if body == nil {
			w.WriteHeader(http.StatusNotFound)
			body = map[string]any{"success": false, "message": "not found"}
		}
	case "/transactions/sync":
		p.syncs.Add(1)
		body = map[string]any{"success": true, "message": "queued", "data": map[string]any{"jobId": "job-7"}}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

type harness struct {
	t        *testing.T
	provider *fakeProvider
	config   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	p := &fakeProvider{records: records.NewBuilder(t, model.ProviderCorpX).
		Credit(100, records.DocumentA).WithEndToEnd(records.EndToEnd(1)).
		Debit(40, records.DocumentB).
		Credit(250, records.DocumentB).
		Build()}
	server := httptest.NewServer(p)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`
logging:
  level: error
database:
  path: %s
display:
  timezone: UTC
providers:
  corpx:
    base_url: %s
    api_key: test
`, filepath.Join(dir, "statements.db"), server.URL)
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o600))

	return &harness{t: t, provider: p, config: cfg}
}

// run executes one stmt invocation and returns its standard output.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("version")
	require.NoError(t, err)
	assert.Equal(t, "stmt version dev\n", out)
}

func TestListFetchesFromProvider(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("list", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.provider.calls.Load())
	assert.Contains(t, out, "R$ 250,00")
	assert.Contains(t, out, "R$ 40,00")
}

func TestListCachedUsesLocalCache(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("fetch", "--quiet")
	require.NoError(t, err)
	require.Equal(t, int32(1), h.provider.calls.Load())

	out, err := h.run("list", "--cached", "--type", "debit")
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.provider.calls.Load(), "cached list must not call the provider")
	assert.Contains(t, out, "R$ 40,00")
	assert.NotContains(t, out, "R$ 250,00")
}

func TestExportToStdout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("export", "--quiet", "--out", "-", "--sort", "value", "--order", "asc", "--signed")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, []string{"-40.00", "100.00", "250.00"}, []string{rows[1][4], rows[2][4], rows[3][4]})
	assert.Equal(t, "corpx-2", rows[1][1])
}

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "march.csv")

	_, err := h.run("export", "--quiet", "--out", path, "--type", "credit")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
	assert.NotContains(t, string(data), "corpx-2")
}

func TestVerify(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("verify", records.EndToEnd(1))
	require.NoError(t, err)
	assert.Contains(t, out, records.EndToEnd(1)+" found")

	out, err = h.run("verify", records.EndToEnd(1), records.EndToEnd(9))
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, out, records.EndToEnd(9)+" not found")
}

func TestVerifyCached(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("verify", "--cached", records.EndToEnd(1))
	require.ErrorIs(t, err, common.ErrNotFound, "nothing cached yet")

	_, err = h.run("fetch", "--quiet")
	require.NoError(t, err)

	out, err := h.run("verify", "--cached", records.EndToEnd(1))
	require.NoError(t, err)
	assert.Contains(t, out, "found")
}

func TestSync(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("sync", "--from", "2025-03-01", "--to", "2025-03-31", "--yes")
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.provider.syncs.Load())
	assert.Contains(t, out, "Sync requested")

	_, err = h.run("sync", "--from", "2025-03-31", "--to", "2025-03-01", "--yes")
	require.Error(t, err)
	assert.Equal(t, int32(1), h.provider.syncs.Load())
}

func TestSyncDeclined(t *testing.T) {
	h := newHarness(t)

	// Empty input declines the confirmation.
	out, err := h.run("sync", "--from", "2025-03-01", "--to", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, int32(0), h.provider.syncs.Load())
	assert.Contains(t, out, "Sync cancelled")
}

func TestRefreshAndHistory(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("fetch", "--quiet")
	require.NoError(t, err)

	out, err := h.run("refresh", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "3 cached, 0 new, 3 total")

	out, err = h.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "reload")
	assert.Contains(t, out, "refresh")
	assert.Contains(t, out, "corpx:all")
}

func TestMigrateStatus(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 0")

	_, err = h.run("migrate")
	require.NoError(t, err)

	out, err = h.run("migrate", "--status")
	require.NoError(t, err)
	assert.NotContains(t, out, "pending")
}

func TestUnknownProvider(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("list", "--provider", "nubank")
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

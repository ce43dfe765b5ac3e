package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	lastDocID atomic.Value
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "online", "models_loaded": true})
	})
	mux.HandleFunc("/api/get_session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "session": map[string]any{
			"pdf": []map[string]any{},
			"ai": []map[string]any{
				{"role": "user", "text": "what is revenue", "time": 1700000000.0},
				{"role": "assistant", "text": "**Revenue** is income", "time": 1700000001.0},
			},
		}})
	})
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "doc_id": "d1", "filename": "report.pdf", "chunks_count": 12, "message": "PDF processed successfully! Created 12 chunks."})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		ts.lastDocID.Store(req["doc_id"])
		writeJSON(w, map[string]any{"success": true, "answer": "It grew.", "relevant_chunks": []string{"chunk one"}})
	})
	mux.HandleFunc("/api/ai_chat", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "answer": "Hello there"})
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// run executes the root command with every persistent flag given explicitly,
// since cobra keeps flag values between executions.
func run(t *testing.T, dataDir, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--data-dir", dataDir, "--server", server}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWhoamiIsStable(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	first, err := run(t, dir, srv.URL, "whoami")
	require.NoError(t, err)
	assert.Regexp(t, `^cli-\d+-\d+\n$`, first)

	second, err := run(t, dir, srv.URL, "whoami")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAskAssistant(t *testing.T) {
	srv := newTestServer(t)
	out, err := run(t, t.TempDir(), srv.URL, "ask", "--channel", "assistant", "--context=false", "--doc-id", "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there\n", out)
}

func TestAskWithoutDocument(t *testing.T) {
	srv := newTestServer(t)
	out, err := run(t, t.TempDir(), srv.URL, "ask", "--channel", "document", "--context=false", "--doc-id", "", "anything")
	require.NoError(t, err)
	assert.Equal(t, "Please upload a PDF document first.\n", out)
}

func TestUploadThenAsk(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	pdf := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\nbody"), 0o600))

	out, err := run(t, dir, srv.URL, "upload", pdf)
	require.NoError(t, err)
	assert.Contains(t, out, "doc_id:   d1")
	assert.Contains(t, out, "chunks:   12")

	out, err = run(t, dir, srv.URL, "ask", "--channel", "document", "--doc-id", "", "--context", "how", "did", "it", "go?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "It grew.\n"))
	assert.Contains(t, out, "Chunk 1")
	assert.Contains(t, out, "chunk one")
	assert.Equal(t, "d1", srv.lastDocID.Load())
}

func TestUploadRejectsNonPDF(t *testing.T) {
	srv := newTestServer(t)
	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain text"), 0o600))

	_, err := run(t, t.TempDir(), srv.URL, "upload", txt)
	require.EqualError(t, err, "Please upload a PDF file")
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	out, err := run(t, dir, srv.URL, "history", "--channel", "", "--find", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to RAG AI Assistant!")
	assert.Contains(t, out, "Revenue is income")

	out, err = run(t, dir, srv.URL, "history", "--channel", "assistant", "--find", "revenue")
	require.NoError(t, err)
	assert.NotContains(t, out, "AI Document Assistant")
	assert.Contains(t, out, "what is revenue")
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)
	out, err := run(t, t.TempDir(), srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Models Ready")

	out, err = run(t, t.TempDir(), "http://127.0.0.1:1", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "API Offline")
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "http://unused:1", "config", "set", "request_timeout", "90s")
	require.NoError(t, err)

	out, err := run(t, dir, "http://unused:1", "config", "get", "request_timeout")
	require.NoError(t, err)
	assert.Equal(t, "90s\n", out)

	out, err = run(t, dir, "http://unused:1", "config", "get", "render_markdown")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = run(t, dir, "http://unused:1", "config", "set", "nope", "1")
	require.Error(t, err)
}

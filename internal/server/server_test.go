package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelforge/reelforge/internal/pipeline"
)

type fakeRunner struct {
	result *pipeline.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if req.OnProgress != nil {
		req.OnProgress("analyzing")
		req.OnProgress("composing")
	}
	return f.result, f.err
}

func TestHealthz(t *testing.T) {
	s := New(&fakeRunner{}, zerolog.Nop())
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestComposeStreamsProgress(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{
		RunID:         "run1",
		OutputPath:    "/work/final.mp4",
		ScriptPath:    "/work/script.json",
		SummariesPath: "/work/summary.json",
	}}
	s := New(runner, zerolog.Nop())
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	body := `{"videos": ["/v/a.mp4"], "intent": "recap", "target_duration_seconds": 20}`
	resp, err := http.Post(srv.URL+"/v1/compose", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var types []string
	var last event
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var ev event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		types = append(types, ev.Type)
		last = ev
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{"progress", "progress", "done"}, types)
	require.NotNil(t, last.Result)
	assert.Equal(t, "run1", last.Result.RunID)
	assert.Equal(t, "/work/final.mp4", last.Result.Output)
}

func TestComposeFailureEmitsErrorEvent(t *testing.T) {
	s := New(&fakeRunner{err: errors.New("render failed")}, zerolog.Nop())
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/compose", "application/json", strings.NewReader(`{"videos": ["/v/a.mp4"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	var last event
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "error", last.Type)
	assert.Contains(t, last.Error, "render failed")
}

func TestComposeRejectsBadRequests(t *testing.T) {
	s := New(&fakeRunner{}, zerolog.Nop())
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/compose", "application/json", strings.NewReader(`not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/v1/compose", "application/json", strings.NewReader(`{"videos": []}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mrdg/buzzer/audio"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) (*httptest.Server, *audio.Session) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	session, err := audio.NewSession(audio.SessionConfig{
		Backend:    audio.NewNull(logger),
		BufferTime: 10 * time.Millisecond,
		Logger:     logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := session.Start(); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(session, logger).Handler())
	t.Cleanup(func() {
		ts.Close()
		session.Close()
	})
	return ts, session
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, ts.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, ts.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/healthz", "", http.StatusOK},
		{"GET", "/notes", "", http.StatusOK},
		{"POST", "/notes/A4/on", "", http.StatusNoContent},
		{"POST", "/notes/C%234/on", "", http.StatusNoContent},
		{"POST", "/notes/H9/on", "", http.StatusNotFound},
		{"POST", "/off", "", http.StatusNoContent},
		{"PUT", "/wave", `{"wave":"tan"}`, http.StatusNoContent},
		{"PUT", "/wave", `{"wave":"square"}`, http.StatusBadRequest},
		{"PUT", "/wave", `{`, http.StatusBadRequest},
		{"PUT", "/octave", `{"octave":5}`, http.StatusNoContent},
		{"PUT", "/octave", `{"octave":50}`, http.StatusBadRequest},
		{"PUT", "/octave", `{}`, http.StatusBadRequest},
		{"PUT", "/volume", `{"volume":30}`, http.StatusNoContent},
		{"PUT", "/volume", `{"volume":-1}`, http.StatusBadRequest},
		{"GET", "/devices", "", http.StatusOK},
		{"PUT", "/device", `{"device":"null"}`, http.StatusNoContent},
		{"PUT", "/device", `{"device":"speakers"}`, http.StatusNotFound},
		{"GET", "/status", "", http.StatusOK},
		{"DELETE", "/error", "", http.StatusNoContent},
		{"GET", "/metrics", "", http.StatusOK},
		{"GET", "/nope", "", http.StatusNotFound},
	}
	for _, test := range tests {
		resp := do(t, ts, test.method, test.path, test.body)
		if want, got := test.want, resp.StatusCode; want != got {
			t.Errorf("%s %s: want status %v, got %v", test.method, test.path, want, got)
		}
	}
}

func TestNotesBody(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, "GET", "/notes", "")
	var notes []string
	if err := json.NewDecoder(resp.Body).Decode(&notes); err != nil {
		t.Fatal(err)
	}
	if want, got := 13, len(notes); want != got {
		t.Fatalf("want %v notes, got %v", want, got)
	}
	if want, got := "C4", notes[0]; want != got {
		t.Errorf("want first note %v, got %v", want, got)
	}
	if want, got := "C5", notes[12]; want != got {
		t.Errorf("want last note %v, got %v", want, got)
	}
}

func TestStatusBody(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, "PUT", "/volume", `{"volume":40}`)
	do(t, ts, "PUT", "/wave", `{"wave":"sine"}`)

	resp := do(t, ts, "GET", "/status", "")
	if want, got := "application/json", resp.Header.Get("Content-Type"); want != got {
		t.Errorf("want content type %v, got %v", want, got)
	}
	var st struct {
		Running bool   `json:"running"`
		Backend string `json:"backend"`
		Device  string `json:"device"`
		Volume  int    `json:"volume"`
		Engine  struct {
			Wave  string `json:"wave"`
			State string `json:"state"`
		} `json:"engine"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if !st.Running {
		t.Error("session should be running")
	}
	if want, got := "null", st.Backend; want != got {
		t.Errorf("want backend %v, got %v", want, got)
	}
	if want, got := 40, st.Volume; want != got {
		t.Errorf("want volume %v, got %v", want, got)
	}
	if want, got := "sine", st.Engine.Wave; want != got {
		t.Errorf("want wave %v, got %v", want, got)
	}
}

func TestMetricsBody(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, "POST", "/notes/A4/on", "")
	resp := do(t, ts, "GET", "/metrics", "")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"buzzer_notes_total", "buzzer_session_starts_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}

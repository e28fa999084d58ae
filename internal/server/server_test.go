package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/scribe/pkg/buildinfo"
	"github.com/matzehuels/scribe/pkg/cache"
	"github.com/matzehuels/scribe/pkg/observability"
	"github.com/matzehuels/scribe/pkg/pipeline"
)

const sampleDoc = `{"elements":[{"block":"root","children":[{"line":"a"},{"block":"child","children":[{"line":"b"}]}]}]}`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	c, err := cache.NewMemoryCache(32)
	if err != nil {
		t.Fatal(err)
	}
	return New(pipeline.NewRunner(c, nil, nil), nil, pipeline.Options{}).Handler()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(t), "GET", "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "ok" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestVersion(t *testing.T) {
	w := do(t, newTestServer(t), "GET", "/version", "", "")
	var info buildinfo.Info
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Version != buildinfo.Version {
		t.Errorf("version = %q, want %q", info.Version, buildinfo.Version)
	}
}

func TestRender(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"default", "", "root {\n a\n child {\n  b\n }\n}"},
		{"indent", "?indent=2", "root {\n  a\n  child {\n    b\n  }\n}"},
		{"tabs", "?tabs=true", "root {\n\ta\n\tchild {\n\t\tb\n\t}\n}"},
		{"trailing newline", "?trailing_newline=1", "root {\n a\n child {\n  b\n }\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/v1/render"+tt.query, "application/json", sampleDoc)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if got := w.Body.String(); got != tt.want {
				t.Errorf("body =\n%q\nwant\n%q", got, tt.want)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestRender_CacheHeader(t *testing.T) {
	h := newTestServer(t)

	first := do(t, h, "POST", "/v1/render", "", sampleDoc)
	second := do(t, h, "POST", "/v1/render", "", sampleDoc)
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q then %q, want MISS then HIT",
			first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
}

func TestRender_Formats(t *testing.T) {
	h := newTestServer(t)
	want := "root {\n a\n}"

	tests := []struct {
		contentType string
		body        string
	}{
		{"application/json; charset=utf-8", `{"elements":[{"block":"root","children":[{"line":"a"}]}]}`},
		{"application/toml", "[[elements]]\nblock = \"root\"\n[[elements.children]]\nline = \"a\"\n"},
		{"application/yaml", "elements:\n  - block: root\n    children:\n      - line: a\n"},
	}

	for _, tt := range tests {
		w := do(t, h, "POST", "/v1/render", tt.contentType, tt.body)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body = %s", tt.contentType, w.Code, w.Body.String())
			continue
		}
		if w.Body.String() != want {
			t.Errorf("%s: body = %q, want %q", tt.contentType, w.Body.String(), want)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"malformed json", "", "", `{"elements":[`, http.StatusUnprocessableEntity, "INVALID_DOCUMENT"},
		{"block and line", "", "", `{"elements":[{"block":"x","line":"y"}]}`, http.StatusUnprocessableEntity, "INVALID_DOCUMENT"},
		{"depth exceeded", "?max_depth=1", "", sampleDoc, http.StatusUnprocessableEntity, "RENDER_DEPTH_EXCEEDED"},
		{"bad indent", "?indent=two", "", sampleDoc, http.StatusBadRequest, "INVALID_INDENT"},
		{"negative indent", "?indent=-1", "", sampleDoc, http.StatusBadRequest, "INVALID_INDENT"},
		{"zero indent", "?indent=0", "", sampleDoc, http.StatusBadRequest, "INVALID_INDENT"},
		{"bad bool", "?tabs=maybe", "", sampleDoc, http.StatusBadRequest, "INVALID_INPUT"},
		{"content type", "", "text/html", sampleDoc, http.StatusBadRequest, "INVALID_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/v1/render"+tt.query, tt.contentType, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if resp := decodeError(t, w); resp.Code != tt.code {
				t.Errorf("code = %q, want %q (message %q)", resp.Code, tt.code, resp.Message)
			}
		})
	}
}

func TestRender_BodyLimit(t *testing.T) {
	payload := strings.Repeat("x", MaxBodyBytes)
	tests := []struct {
		contentType string
		body        string
	}{
		{"application/json", `{"elements":[{"line":"` + payload + `"}]}`},
		{"application/toml", "[[elements]]\nline = \"" + payload + "\"\n"},
		{"application/yaml", "elements:\n  - line: " + payload + "\n"},
	}

	h := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			w := do(t, h, "POST", "/v1/render", tt.contentType, tt.body)
			if w.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("status = %d, want 413 (body %.120s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestRender_ErrorMessageOmitsCode(t *testing.T) {
	w := do(t, newTestServer(t), "POST", "/v1/render", "application/yaml", "elements: [")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Code != "INVALID_DOCUMENT" {
		t.Errorf("code = %q", resp.Code)
	}
	if strings.Contains(resp.Message, "INVALID_DOCUMENT") {
		t.Errorf("message repeats the code: %q", resp.Message)
	}
	if !strings.HasPrefix(resp.Message, "decode yaml") {
		t.Errorf("message = %q, want decoder context", resp.Message)
	}
}

func TestGraph(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, "POST", "/v1/graph?format=dot", "", sampleDoc)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "digraph G {") {
		t.Errorf("body is not DOT: %.60s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}

	w = do(t, h, "POST", "/v1/graph?format=png", "", sampleDoc)
	if w.Code != http.StatusBadRequest {
		t.Errorf("png status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "INVALID_FORMAT" {
		t.Errorf("png code = %q", resp.Code)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	h := newTestServer(t)

	if w := do(t, h, "GET", "/nope", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", w.Code)
	}
	if w := do(t, h, "GET", "/v1/render", "", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/render status = %d", w.Code)
	}
}

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests, responses int
	lastStatus          int
}

func (h *countingHTTPHooks) OnRequest(context.Context, string, string) { h.requests++ }
func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses++
	h.lastStatus = status
}

func TestHTTPHooks(t *testing.T) {
	hooks := &countingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	h := newTestServer(t)
	do(t, h, "GET", "/healthz", "", "")
	do(t, h, "POST", "/v1/render?indent=x", "", sampleDoc)

	if hooks.requests != 2 || hooks.responses != 2 {
		t.Errorf("hooks saw %d requests, %d responses; want 2, 2", hooks.requests, hooks.responses)
	}
	if hooks.lastStatus != http.StatusBadRequest {
		t.Errorf("last status = %d, want 400", hooks.lastStatus)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(nil, nil, pipeline.Options{}).ListenAndServe(ctx, addr, time.Second)
	}()

	// Wait for the listener.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

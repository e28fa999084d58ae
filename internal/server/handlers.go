package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/scribe/pkg/buildinfo"
	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/errors"
	"github.com/matzehuels/scribe/pkg/pipeline"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, hit, err := s.Runner.RenderWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Write([]byte(out))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Format = r.URL.Query().Get("format")

	data, hit, err := s.Runner.GraphWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if opts.Format == pipeline.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Write(data)
}

// readDocument decodes the body in the format named by Content-Type.
// The body is read in full first so an oversized request surfaces as
// *http.MaxBytesError whatever the decoder.
func readDocument(r *http.Request) (*document.Document, error) {
	format := document.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "bad content type %q", ct)
		}
		switch mt {
		case "application/json":
		case "application/toml":
			format = document.FormatTOML
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = document.FormatYAML
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
		}
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return document.Read(bytes.NewReader(body), format)
}

// options applies query parameters on top of the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.Defaults
	opts.Logger = s.Logger.With("request_id", middleware.GetReqID(r.Context()))
	q := r.URL.Query()

	if v := q.Get("indent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidIndent, err, "indent must be an integer")
		}
		if n < 1 {
			return opts, errors.New(errors.ErrCodeInvalidIndent, "indent must be at least 1, got %d (use tabs=true for tab indentation)", n)
		}
		opts.IndentWidth = n
		opts.IndentUnit = ""
	}
	if v := q.Get("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "max_depth must be an integer")
		}
		opts.MaxDepth = n
	}
	for name, dst := range map[string]*bool{
		"tabs":             &opts.Tabs,
		"trailing_newline": &opts.TrailingNewline,
		"detailed":         &opts.Detailed,
		"refresh":          &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a boolean", name)
		}
		*dst = b
	}
	return opts, nil
}

// fail maps err to a status code and writes the JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
			"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
	case errors.IsValidation(err):
		writeError(w, statusFor(errors.GetCode(err)), string(errors.GetCode(err)), errors.UserMessage(err))
	default:
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, string(errors.ErrCodeInternal), "internal error")
	}
}

// statusFor distinguishes malformed requests (400) from well-formed
// documents that cannot be rendered (422).
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidElement, errors.ErrCodeDepthExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

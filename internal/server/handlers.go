package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ginjaninja78/rcli/internal/converter"
	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/genpass"
	"github.com/ginjaninja78/rcli/internal/logging"
	"github.com/ginjaninja78/rcli/internal/types"
)

// GenerateRequest is the body of POST /api/v1/genpass. Omitted fields take
// the server's defaults; pointer bools distinguish missing from false.
type GenerateRequest struct {
	Length    int   `json:"length"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Digits    *bool `json:"digits"`
	Symbols   *bool `json:"symbols"`
}

// GenerateResponse is the body returned for a generated password.
type GenerateResponse struct {
	Password  string  `json:"password"`
	Length    int     `json:"length"`
	Score     int     `json:"score"`
	Strength  string  `json:"strength"`
	Entropy   float64 `json:"entropy"`
	CrackTime string  `json:"crack_time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleConvert handles POST /api/v1/convert. The body is CSV; the query
// string may set format, delimiter, header and encoding.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := s.opts.Format
	if token := q.Get("format"); token != "" {
		f, err := encoder.ParseFormat(token)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		format = f
	}

	settings := s.opts.CSV
	if q.Has("delimiter") {
		settings.Delimiter = q.Get("delimiter")
	}
	if q.Has("encoding") {
		settings.Encoding = q.Get("encoding")
	}
	if token := q.Get("header"); token != "" {
		header, err := strconv.ParseBool(token)
		if err != nil {
			s.respondError(w, r, types.NewConfigError("header", err))
			return
		}
		settings.Header = header
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.Settings.MaxBodyBytes)
	defer body.Close()

	out, stats, err := converter.ConvertReader(body, format, settings)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context(), s.logger).Debug("converted upload",
		"format", format.String(),
		"rows", stats.Rows,
		"columns", stats.Columns,
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Row-Count", strconv.Itoa(stats.Rows))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// handleGenpass handles POST /api/v1/genpass.
func (s *Server) handleGenpass(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
			return
		}
	}

	pw, err := s.opts.Generator.Generate(s.generateOptions(req))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Password:  pw.Text,
		Length:    len(pw.Text),
		Score:     pw.Strength.Score,
		Strength:  pw.Strength.Label(),
		Entropy:   pw.Strength.Entropy,
		CrackTime: pw.Strength.CrackTime,
	})
}

// generateOptions overlays the fields present in req on the server defaults.
func (s *Server) generateOptions(req GenerateRequest) genpass.Options {
	opts := s.opts.Genpass
	if req.Length != 0 {
		opts.Length = req.Length
	}
	if req.Uppercase != nil {
		opts.Uppercase = *req.Uppercase
	}
	if req.Lowercase != nil {
		opts.Lowercase = *req.Lowercase
	}
	if req.Digits != nil {
		opts.Digits = *req.Digits
	}
	if req.Symbols != nil {
		opts.Symbols = *req.Symbols
	}
	return opts
}

// respondError logs err and writes it with the status matching its kind.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	logging.FromContext(r.Context(), s.logger).Warn("request error",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse(msg))
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, types.ErrConfig), errors.Is(err, types.ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

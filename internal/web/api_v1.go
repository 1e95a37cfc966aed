package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rook-computer/sigimage/internal/fonts"
	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/signature"
	"github.com/rook-computer/sigimage/internal/state"
	"github.com/rook-computer/sigimage/internal/strokes"
)

// strokesFormField is the form field Signature Pad style widgets post.
const strokesFormField = "output"

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type statusResponse struct {
	Phase         string         `json:"phase"`
	StartedAt     time.Time      `json:"startedAt"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	CaptureURL    string         `json:"captureUrl,omitempty"`
	Counters      countersJSON   `json:"counters"`
	Last          *lastJSON      `json:"last,omitempty"`
	Defaults      renderDefaults `json:"defaults"`
}

type countersJSON struct {
	Strokes  uint64 `json:"strokes"`
	Names    uint64 `json:"names"`
	Failures uint64 `json:"failures"`
}

type lastJSON struct {
	Kind   string    `json:"kind"`
	At     time.Time `json:"at"`
	Name   string    `json:"name,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type renderDefaults struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PenWidth   float64 `json:"penWidth"`
	FontSize   float64 `json:"fontSize"`
	PenColor   string  `json:"penColor"`
	Background string  `json:"background"`
}

// paramError marks a bad query parameter.
type paramError struct {
	Name string
	Err  error
}

func (e *paramError) Error() string { return "parameter " + e.Name + ": " + e.Err.Error() }
func (e *paramError) Unwrap() error { return e.Err }

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/signature/strokes", func(w http.ResponseWriter, r *http.Request) { handleStrokes(w, r, deps) })
	mux.HandleFunc("/signature/name", func(w http.ResponseWriter, r *http.Request) { handleName(w, r, deps) })
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/capture-qr", func(w http.ResponseWriter, r *http.Request) { handleCaptureQR(w, r, deps) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

func handleStrokes(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	cfg, err := configFromQuery(deps.Generator.Config, r.URL.Query(), deps.MaxCanvasPixels)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, deps.MaxBodyBytes)
	var payload string
	if isFormRequest(r) {
		payload, err = formValue(r, strokesFormField)
	} else {
		var body []byte
		body, err = io.ReadAll(r.Body)
		payload = string(body)
	}
	if err != nil {
		writeBodyError(w, err)
		return
	}

	img, err := deps.Generator.WithConfig(cfg).RenderStrokes(payload)
	if err != nil {
		deps.Store.RecordFailure(state.KindStrokes, err)
		writeRenderError(w, deps.Logger, err)
		return
	}
	deps.Store.RecordRender(state.KindStrokes, img, "")
	writePNG(w, deps.Logger, img)
}

func handleName(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	cfg, err := configFromQuery(deps.Generator.Config, r.URL.Query(), deps.MaxCanvasPixels)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, deps.MaxBodyBytes)
	var name string
	if isJSONRequest(r) {
		var req nameRequest
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if !errors.As(err, &maxErr) {
				writeAPIError(w, http.StatusBadRequest, "malformed_input", "body must be {\"name\": \"...\"}")
				return
			}
		}
		name = req.Name
	} else {
		name, err = formValue(r, "name")
	}
	if err != nil {
		writeBodyError(w, err)
		return
	}

	img, err := deps.Generator.WithConfig(cfg).RenderText(name, deps.FontPath)
	if err != nil {
		deps.Store.RecordFailure(state.KindName, err)
		writeRenderError(w, deps.Logger, err)
		return
	}
	deps.Store.RecordRender(state.KindName, img, name)
	writePNG(w, deps.Logger, img)
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap := deps.Store.Snapshot()
	cfg := deps.Generator.Config
	resp := statusResponse{
		Phase:         snap.Phase.String(),
		StartedAt:     snap.StartedAt,
		UptimeSeconds: int64(time.Since(snap.StartedAt).Seconds()),
		CaptureURL:    snap.Network.URL,
		Counters: countersJSON{
			Strokes:  snap.Counters.Strokes,
			Names:    snap.Counters.Names,
			Failures: snap.Counters.Failures,
		},
		Defaults: renderDefaults{
			Width:      cfg.Width,
			Height:     cfg.Height,
			PenWidth:   cfg.PenWidth,
			FontSize:   cfg.FontSize,
			PenColor:   render.FormatHexColor(colorOr(cfg.PenColor, render.DefaultPenColor)),
			Background: render.FormatHexColor(colorOr(cfg.Background, render.DefaultBackground)),
		},
	}
	if snap.Last.Kind != "" {
		last := &lastJSON{Kind: string(snap.Last.Kind), At: snap.Last.At, Name: snap.Last.Name, Error: snap.Last.Err}
		if img := snap.Last.Image; img != nil {
			last.Width, last.Height = img.Bounds().Dx(), img.Bounds().Dy()
		}
		resp.Last = last
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleCaptureQR(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	captureURL := deps.Store.Snapshot().Network.URL
	if captureURL == "" {
		writeAPIError(w, http.StatusNotFound, "no_capture_url", "capture URL not known yet")
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid_parameter", "size must be a positive integer")
			return
		}
		size = parsed
	}
	data, err := render.EncodeQRCodePNG(captureURL, size)
	if err != nil {
		deps.Logger.Errorf("web", "qr code: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// configFromQuery applies per-request overrides to base.
func configFromQuery(base signature.Config, q url.Values, maxPixels int) (signature.Config, error) {
	cfg := base
	ints := []struct {
		name string
		dst  *int
	}{{"width", &cfg.Width}, {"height", &cfg.Height}}
	for _, p := range ints {
		if raw := q.Get(p.name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return cfg, &paramError{Name: p.name, Err: err}
			}
			*p.dst = v
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{{"penWidth", &cfg.PenWidth}, {"fontSize", &cfg.FontSize}}
	for _, p := range floats {
		if raw := q.Get(p.name); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return cfg, &paramError{Name: p.name, Err: err}
			}
			*p.dst = v
		}
	}
	colors := []struct {
		name string
		dst  *color.Color
	}{{"penColor", &cfg.PenColor}, {"background", &cfg.Background}}
	for _, p := range colors {
		if raw := q.Get(p.name); raw != "" {
			v, err := render.ParseHexColor(raw)
			if err != nil {
				return cfg, &paramError{Name: p.name, Err: err}
			}
			*p.dst = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Width > maxPixels/cfg.Height {
		return cfg, fmt.Errorf("%w: canvas %dx%d exceeds %d pixels", signature.ErrInvalidConfig, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, nil
}

func colorOr(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func formValue(r *http.Request, field string) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(1 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return "", err
	}
	return r.PostFormValue(field), nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeAPIError(w, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Sprintf("body exceeds %d bytes", maxErr.Limit))
		return
	}
	writeAPIError(w, http.StatusBadRequest, "bad_request", err.Error())
}

// writeRenderError maps the render error taxonomy to HTTP statuses.
func writeRenderError(w http.ResponseWriter, logger sysLogger, err error) {
	var (
		malformed    *strokes.MalformedInputError
		notAvailable *fonts.FontNotAvailableError
		loadErr      *fonts.FontLoadError
	)
	switch {
	case errors.As(err, &malformed):
		writeAPIError(w, http.StatusBadRequest, "malformed_input", err.Error())
	case errors.Is(err, signature.ErrInvalidConfig):
		writeAPIError(w, http.StatusBadRequest, "invalid_config", err.Error())
	case errors.As(err, &notAvailable):
		logger.Errorf("web", "render: %v", err)
		writeAPIError(w, http.StatusServiceUnavailable, "font_not_available", err.Error())
	case errors.As(err, &loadErr):
		logger.Errorf("web", "render: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "font_load_failed", err.Error())
	default:
		logger.Errorf("web", "render: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
	}
}

func writePNG(w http.ResponseWriter, logger sysLogger, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Errorf("web", "png encode: %v", err)
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

// Package server exposes the renderer and the composer over HTTP.
//
// Every render endpoint answers with image/png. Images are passed either
// inline as base64 or by the id of a previously uploaded asset.
package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/xob0t/fitbox/pkg/compose"
	"github.com/xob0t/fitbox/pkg/config"
	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
	"github.com/xob0t/fitbox/pkg/render"
)

const maxBodySize = 32 << 20

var (
	errUnknownAsset = errors.New("unknown asset")
	errBadRequest   = errors.New("bad request")
)

// ── Asset Manager ──

type asset struct {
	Name string
	Data []byte
	Mime string
}

type assetManager struct {
	mu     sync.RWMutex
	assets map[string]*asset
}

func newAssetManager() *assetManager {
	return &assetManager{assets: make(map[string]*asset)}
}

func (am *assetManager) add(name string, data []byte, mimeType string) string {
	id := randomID()
	am.mu.Lock()
	am.assets[id] = &asset{Name: name, Data: data, Mime: mimeType}
	am.mu.Unlock()
	return id
}

func (am *assetManager) get(id string) (*asset, bool) {
	am.mu.RLock()
	a, ok := am.assets[id]
	am.mu.RUnlock()
	return a, ok
}

type assetInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int    `json:"size"`
}

func (am *assetManager) listAll() []assetInfo {
	am.mu.RLock()
	defer am.mu.RUnlock()
	result := make([]assetInfo, 0, len(am.assets))
	for id, a := range am.assets {
		result = append(result, assetInfo{ID: id, Name: a.Name, Mime: a.Mime, Size: len(a.Data)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (am *assetManager) remove(id string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	if _, ok := am.assets[id]; !ok {
		return false
	}
	delete(am.assets, id)
	return true
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ── Server ──

// Server serves the HTTP API.
type Server struct {
	cfg      *config.Config
	composer *compose.Composer
	assets   *assetManager
	log      *slog.Logger
}

// New creates a server rendering with composer. A nil logger logs nothing.
func New(cfg *config.Config, composer *compose.Composer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:      cfg,
		composer: composer,
		assets:   newAssetManager(),
		log:      logger,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/render/text", s.handleRenderText)
	mux.HandleFunc("POST /api/render/image", s.handleRenderImage)
	mux.HandleFunc("POST /api/compose", s.handleCompose)
	mux.HandleFunc("GET /api/emotion", s.handleGetEmotion)
	mux.HandleFunc("POST /api/emotion", s.handleSwitchEmotion)
	mux.HandleFunc("POST /api/upload/image", s.handleUploadImage)
	mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)

	return mux
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// ── Requests ──

// imageRef names an image by uploaded asset id or carries it inline.
type imageRef struct {
	ID     string `json:"id,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

func (ref *imageRef) empty() bool { return ref == nil || (ref.ID == "" && ref.Base64 == "") }

type textRequest struct {
	Text          string    `json:"text"`
	Rect          [4]int    `json:"rect"` // x1, y1, x2, y2; zero means the configured region
	Base          *imageRef `json:"base,omitempty"`
	Overlay       *imageRef `json:"overlay,omitempty"`
	Color         string    `json:"color,omitempty"`
	BracketColor  string    `json:"bracket_color,omitempty"`
	MaxFontHeight *int      `json:"max_font_height,omitempty"`
	LineSpacing   *float64  `json:"line_spacing,omitempty"`
	Align         string    `json:"align,omitempty"`
	VAlign        string    `json:"valign,omitempty"`
	Wrap          string    `json:"wrap,omitempty"`
}

type imageRequest struct {
	Rect         [4]int    `json:"rect"`
	Image        *imageRef `json:"image"`
	Base         *imageRef `json:"base,omitempty"`
	Overlay      *imageRef `json:"overlay,omitempty"`
	Align        string    `json:"align,omitempty"`
	VAlign       string    `json:"valign,omitempty"`
	Padding      *int      `json:"padding,omitempty"`
	AllowUpscale *bool     `json:"allow_upscale,omitempty"`
	KeepAlpha    *bool     `json:"keep_alpha,omitempty"`
}

type composeRequest struct {
	Text  string    `json:"text"`
	Image *imageRef `json:"image,omitempty"`
}

type emotionRequest struct {
	Tag string `json:"tag"`
}

type emotionResponse struct {
	Tag  string `json:"tag"`
	Base string `json:"base"`
}

// ── Render ──

func (s *Server) handleRenderText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := s.composer.TextOptions()
	if err := applyTextOptions(&opts, &req); err != nil {
		s.fail(w, err)
		return
	}

	base, overlay, err := s.canvasImages(req.Base, req.Overlay)
	if err != nil {
		s.fail(w, err)
		return
	}

	data, err := s.composer.Renderer().DrawTextAuto(base, overlay, s.rect(req.Rect), req.Text, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	writePNG(w, data)
}

func applyTextOptions(opts *render.TextOptions, req *textRequest) error {
	if req.Color != "" {
		c, err := generator.ParseColor(req.Color)
		if err != nil {
			return fmt.Errorf("%w: color: %v", errBadRequest, err)
		}
		opts.Color = c
	}
	if req.BracketColor != "" {
		c, err := generator.ParseColor(req.BracketColor)
		if err != nil {
			return fmt.Errorf("%w: bracket_color: %v", errBadRequest, err)
		}
		opts.BracketColor = c
	}
	if req.MaxFontHeight != nil {
		opts.MaxFontHeight = *req.MaxFontHeight
	}
	if req.LineSpacing != nil {
		opts.LineSpacing = *req.LineSpacing
	}
	if req.Wrap != "" {
		algo, ok := layout.ParseWrapAlgorithm(req.Wrap)
		if !ok {
			return fmt.Errorf("%w: unknown wrap algorithm %q", errBadRequest, req.Wrap)
		}
		opts.Wrap = algo
	}
	var err error
	if req.Align != "" {
		if opts.Align, err = layout.ParseAlign(req.Align); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if req.VAlign != "" {
		if opts.VAlign, err = layout.ParseVAlign(req.VAlign); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return nil
}

func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Image.empty() {
		s.fail(w, fmt.Errorf("%w: image is required", errBadRequest))
		return
	}

	opts := render.ImageOptions{
		Align:        layout.AlignCenter,
		VAlign:       layout.VAlignMiddle,
		Padding:      s.cfg.Padding,
		AllowUpscale: true,
		KeepAlpha:    true,
	}
	var err error
	if req.Align != "" {
		if opts.Align, err = layout.ParseAlign(req.Align); err != nil {
			s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if req.VAlign != "" {
		if opts.VAlign, err = layout.ParseVAlign(req.VAlign); err != nil {
			s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if req.Padding != nil {
		opts.Padding = *req.Padding
	}
	if req.AllowUpscale != nil {
		opts.AllowUpscale = *req.AllowUpscale
	}
	if req.KeepAlpha != nil {
		opts.KeepAlpha = *req.KeepAlpha
	}

	content, err := s.loadImage(req.Image)
	if err != nil {
		s.fail(w, err)
		return
	}
	base, overlay, err := s.canvasImages(req.Base, req.Overlay)
	if err != nil {
		s.fail(w, err)
		return
	}

	data, err := render.PasteImageAuto(base, content, overlay, s.rect(req.Rect), opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	writePNG(w, data)
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !s.decode(w, r, &req) {
		return
	}

	var img image.Image
	if !req.Image.empty() {
		var err error
		if img, err = s.loadImage(req.Image); err != nil {
			s.fail(w, err)
			return
		}
	}

	data, err := s.composer.Compose(req.Text, img)
	if err != nil {
		s.fail(w, err)
		return
	}
	writePNG(w, data)
}

// ── Emotion ──

func (s *Server) handleGetEmotion(w http.ResponseWriter, r *http.Request) {
	tag, base := s.composer.Emotion()
	writeJSON(w, emotionResponse{Tag: tag, Base: base})
}

func (s *Server) handleSwitchEmotion(w http.ResponseWriter, r *http.Request) {
	var req emotionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Tag == "" {
		s.fail(w, fmt.Errorf("%w: tag is required", errBadRequest))
		return
	}
	base := s.composer.SwitchEmotion(req.Tag)
	writeJSON(w, emotionResponse{Tag: req.Tag, Base: base})
}

// ── Assets ──

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}
	if _, err := render.DecodeImageBytes(data); err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	mimeType := mime.TypeByExtension(filepath.Ext(header.Filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	id := s.assets.add(header.Filename, data, mimeType)
	s.log.Info("asset uploaded", "id", id, "name", header.Filename, "size", len(data))

	writeJSON(w, map[string]string{
		"id":   id,
		"name": header.Filename,
		"url":  "/api/assets/" + id,
	})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assets.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	w.Write(a.Data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.assets.listAll())
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.assets.remove(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}

// ── Helpers ──

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.fail(w, fmt.Errorf("%w: decode request: %v", errBadRequest, err))
		return false
	}
	return true
}

// rect returns the requested rectangle, or the configured region for a zero value.
func (s *Server) rect(v [4]int) layout.Rect {
	if v == [4]int{} {
		return s.cfg.Region()
	}
	return layout.Rect{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
}

func (s *Server) loadImage(ref *imageRef) (image.Image, error) {
	if ref.Base64 != "" {
		data, err := base64.StdEncoding.DecodeString(ref.Base64)
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", errBadRequest, err)
		}
		img, err := render.DecodeImageBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return img, nil
	}
	a, ok := s.assets.get(ref.ID)
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownAsset, ref.ID)
	}
	return render.DecodeImageBytes(a.Data)
}

// canvasImages resolves the base and overlay of a render request, falling
// back to the composer's current base image and configured overlay.
func (s *Server) canvasImages(baseRef, overlayRef *imageRef) (base, overlay image.Image, err error) {
	if baseRef.empty() {
		base = s.composer.BaseImage()
	} else if base, err = s.loadImage(baseRef); err != nil {
		return nil, nil, err
	}
	if overlayRef.empty() {
		overlay = s.composer.Overlay()
	} else if overlay, err = s.loadImage(overlayRef); err != nil {
		return nil, nil, err
	}
	return base, overlay, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, layout.ErrInvalidGeometry),
		errors.Is(err, layout.ErrInvalidContent),
		errors.Is(err, compose.ErrNoInput):
		status = http.StatusBadRequest
	case errors.Is(err, errUnknownAsset):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	} else {
		s.log.Debug("request rejected", "status", status, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

//go:build js && wasm

// fitbox WASM - Client-side renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o fitbox.wasm ./clients/wasm/
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"sync"
	"syscall/js"

	"github.com/xob0t/fitbox/pkg/compose"
	"github.com/xob0t/fitbox/pkg/config"
	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
	"github.com/xob0t/fitbox/pkg/render"
)

// In-memory asset store (replaces server-side asset manager).
var (
	assetsMu sync.RWMutex
	assets   = make(map[string][]byte)

	composer *compose.Composer
)

func main() {
	var err error
	// No filesystem: the built-in font and a solid canvas are used.
	composer, err = compose.New(config.Default())
	if err != nil {
		fmt.Println("fitbox WASM failed:", err)
		return
	}
	fmt.Println("fitbox WASM loaded")

	js.Global().Set("goRenderText", js.FuncOf(renderText))
	js.Global().Set("goPasteImage", js.FuncOf(pasteImage))
	js.Global().Set("goCompose", js.FuncOf(composeImage))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// ── Assets ──

// resolveAsset decodes the image stored under id. An empty id yields nil.
func resolveAsset(id string) (image.Image, error) {
	if id == "" {
		return nil, nil
	}
	assetsMu.RLock()
	data, ok := assets[id]
	assetsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown asset %q", id)
	}
	return render.DecodeImageBytes(data)
}

// goRegisterAsset(id, base64Data) - store an image in Go memory.
func registerAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need id, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	assetsMu.Lock()
	assets[args[0].String()] = data
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// goRemoveAsset(id) - remove an asset from Go memory.
func removeAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need id")
	}
	assetsMu.Lock()
	delete(assets, args[0].String())
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// ── Rendering ──

type request struct {
	Text          string   `json:"text"`
	Rect          [4]int   `json:"rect"` // zero means the default region
	Image         string   `json:"image"`
	Base          string   `json:"base"`
	Overlay       string   `json:"overlay"`
	Color         string   `json:"color"`
	BracketColor  string   `json:"bracket_color"`
	MaxFontHeight int      `json:"max_font_height"`
	LineSpacing   *float64 `json:"line_spacing"`
	Align         string   `json:"align"`
	VAlign        string   `json:"valign"`
	Wrap          string   `json:"wrap"`
	Padding       *int     `json:"padding"`
	NoUpscale     bool     `json:"no_upscale"`
	NoAlpha       bool     `json:"no_alpha"`
}

func parseRequest(args []js.Value) (*request, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("need requestJSON")
	}
	var req request
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

func (req *request) rect() layout.Rect {
	if req.Rect == [4]int{} {
		return config.Default().Region()
	}
	return layout.Rect{X1: req.Rect[0], Y1: req.Rect[1], X2: req.Rect[2], Y2: req.Rect[3]}
}

func (req *request) canvas() (base, overlay image.Image, err error) {
	if base, err = resolveAsset(req.Base); err != nil {
		return nil, nil, err
	}
	if base == nil {
		base = composer.BaseImage()
	}
	if overlay, err = resolveAsset(req.Overlay); err != nil {
		return nil, nil, err
	}
	return base, overlay, nil
}

func (req *request) alignment() (layout.Align, layout.VAlign, error) {
	a, v := layout.AlignCenter, layout.VAlignMiddle
	var err error
	if req.Align != "" {
		if a, err = layout.ParseAlign(req.Align); err != nil {
			return a, v, err
		}
	}
	if req.VAlign != "" {
		if v, err = layout.ParseVAlign(req.VAlign); err != nil {
			return a, v, err
		}
	}
	return a, v, nil
}

// result wraps encoded PNG bytes, or an error, as the JS return value.
func result(data []byte, err error) interface{} {
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}

// goRenderText(requestJSON) - fit text into the region, return base64 PNG.
func renderText(this js.Value, args []js.Value) interface{} {
	req, err := parseRequest(args)
	if err != nil {
		return result(nil, err)
	}

	opts := composer.TextOptions()
	if req.Color != "" {
		if opts.Color, err = generator.ParseColor(req.Color); err != nil {
			return result(nil, err)
		}
	}
	if req.BracketColor != "" {
		if opts.BracketColor, err = generator.ParseColor(req.BracketColor); err != nil {
			return result(nil, err)
		}
	}
	if req.MaxFontHeight > 0 {
		opts.MaxFontHeight = req.MaxFontHeight
	}
	if req.LineSpacing != nil {
		opts.LineSpacing = *req.LineSpacing
	}
	if req.Wrap != "" {
		algo, ok := layout.ParseWrapAlgorithm(req.Wrap)
		if !ok {
			return result(nil, fmt.Errorf("unknown wrap algorithm %q", req.Wrap))
		}
		opts.Wrap = algo
	}
	if opts.Align, opts.VAlign, err = req.alignment(); err != nil {
		return result(nil, err)
	}

	base, overlay, err := req.canvas()
	if err != nil {
		return result(nil, err)
	}
	return result(composer.Renderer().DrawTextAuto(base, overlay, req.rect(), req.Text, opts))
}

// goPasteImage(requestJSON) - fit the "image" asset into the region.
func pasteImage(this js.Value, args []js.Value) interface{} {
	req, err := parseRequest(args)
	if err != nil {
		return result(nil, err)
	}
	content, err := resolveAsset(req.Image)
	if err != nil {
		return result(nil, err)
	}
	if content == nil {
		return result(nil, fmt.Errorf("image asset is required"))
	}

	opts := render.ImageOptions{
		Padding:      config.Default().Padding,
		AllowUpscale: !req.NoUpscale,
		KeepAlpha:    !req.NoAlpha,
	}
	if req.Padding != nil {
		opts.Padding = *req.Padding
	}
	if opts.Align, opts.VAlign, err = req.alignment(); err != nil {
		return result(nil, err)
	}

	base, overlay, err := req.canvas()
	if err != nil {
		return result(nil, err)
	}
	return result(render.PasteImageAuto(base, content, overlay, req.rect(), opts))
}

// goCompose(requestJSON) - text and/or the "image" asset, laid out together.
func composeImage(this js.Value, args []js.Value) interface{} {
	req, err := parseRequest(args)
	if err != nil {
		return result(nil, err)
	}
	img, err := resolveAsset(req.Image)
	if err != nil {
		return result(nil, err)
	}
	return result(composer.Compose(req.Text, img))
}

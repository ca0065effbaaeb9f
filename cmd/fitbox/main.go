// fitbox - Auto-fit text and images into a region of a base image.
//
// Usage:
//
//	fitbox init [--config path] [--force]
//	fitbox text -o <file> [options] <text>
//	fitbox image -o <file> --image <path> [options]
//	fitbox compose -o <file> [--text <text>] [--image <path>] [--emotion <tag>]
//	fitbox serve [--listen :8080]
package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/xob0t/fitbox/clients/server"
	"github.com/xob0t/fitbox/pkg/compose"
	"github.com/xob0t/fitbox/pkg/config"
	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
	"github.com/xob0t/fitbox/pkg/render"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "text":
		err = runText(os.Args[2:])
	case "image":
		err = runImage(os.Args[2:])
	case "compose":
		err = runCompose(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fatal(err)
	}
}

// ── Shared setup ──

// setup loads the configuration, prints its warnings and installs the logger.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	for _, w := range warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

// rectFlag converts a --rect value, falling back to the configured region.
func rectFlag(v []int, cfg *config.Config) (layout.Rect, error) {
	switch len(v) {
	case 0:
		return cfg.Region(), nil
	case 4:
		return layout.Rect{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
	default:
		return layout.Rect{}, fmt.Errorf("--rect needs x1,y1,x2,y2, got %d values", len(v))
	}
}

// loadOptional loads path, or returns nil for an empty path.
func loadOptional(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	return render.LoadImage(path)
}

// canvasImages resolves --base and --overlay, defaulting to the composer's.
func canvasImages(c *compose.Composer, basePath, overlayPath string) (base, overlay image.Image, err error) {
	if base, err = loadOptional(basePath); err != nil {
		return nil, nil, err
	}
	if base == nil {
		base = c.BaseImage()
	}
	if overlay, err = loadOptional(overlayPath); err != nil {
		return nil, nil, err
	}
	if overlay == nil {
		overlay = c.Overlay()
	}
	return base, overlay, nil
}

// writeOutput stores encoded PNG bytes at output, re-encoding when the
// extension asks for another format.
func writeOutput(output string, data []byte) error {
	img, err := generator.DecodePNG(data)
	if err != nil {
		return err
	}
	if err := generator.Write(output, img); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}

// readText joins positional args, or reads stdin when the only arg is "-".
func readText(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

// ── Commands ──

func runInit(args []string) error {
	fs := pflag.NewFlagSet("init", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", defaultConfigPath, "Output path for the config file")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.WriteDefault(*configPath, *force); err != nil {
		return err
	}
	fmt.Printf("Created: %s\n", *configPath)
	return nil
}

func runText(args []string) error {
	fs := pflag.NewFlagSet("text", pflag.ExitOnError)
	var (
		configPath    = fs.StringP("config", "c", defaultConfigPath, "Config file")
		output        = fs.StringP("output", "o", "", "Output file (.png or .bmp)")
		basePath      = fs.String("base", "", "Base image (default: configured base image)")
		overlayPath   = fs.String("overlay", "", "Overlay image (default: configured overlay)")
		rect          = fs.IntSlice("rect", nil, "Region x1,y1,x2,y2 (default: configured region)")
		textColor     = fs.String("color", "", "Text color (default: text_color)")
		bracketColor  = fs.String("bracket-color", "", "Bracket color (default: bracket_color)")
		maxFontHeight = fs.Int("max-font-height", 0, "Largest font size (default: max_font_height)")
		lineSpacing   = fs.Float64("line-spacing", -1, "Extra leading as a fraction of the line (default: line_spacing)")
		align         = fs.String("align", "center", "left, center or right")
		valign        = fs.String("valign", "middle", "top, middle or bottom")
		wrap          = fs.String("wrap", "", "original or knuth_plass (default: text_wrap_algorithm)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("output file is required (-o)")
	}
	text, err := readText(fs.Args())
	if err != nil {
		return err
	}

	cfg, _, err := setup(*configPath)
	if err != nil {
		return err
	}
	c, err := compose.New(cfg)
	if err != nil {
		return err
	}

	opts := c.TextOptions()
	if *textColor != "" {
		if opts.Color, err = generator.ParseColor(*textColor); err != nil {
			return err
		}
	}
	if *bracketColor != "" {
		if opts.BracketColor, err = generator.ParseColor(*bracketColor); err != nil {
			return err
		}
	}
	if *maxFontHeight > 0 {
		opts.MaxFontHeight = *maxFontHeight
	}
	if *lineSpacing >= 0 {
		opts.LineSpacing = *lineSpacing
	}
	if opts.Align, err = layout.ParseAlign(*align); err != nil {
		return err
	}
	if opts.VAlign, err = layout.ParseVAlign(*valign); err != nil {
		return err
	}
	if *wrap != "" {
		algo, ok := layout.ParseWrapAlgorithm(*wrap)
		if !ok {
			return fmt.Errorf("unknown wrap algorithm %q: use original or knuth_plass", *wrap)
		}
		opts.Wrap = algo
	}

	r, err := rectFlag(*rect, cfg)
	if err != nil {
		return err
	}
	base, overlay, err := canvasImages(c, *basePath, *overlayPath)
	if err != nil {
		return err
	}

	data, err := c.Renderer().DrawTextAuto(base, overlay, r, text, opts)
	if err != nil {
		return err
	}
	return writeOutput(*output, data)
}

func runImage(args []string) error {
	fs := pflag.NewFlagSet("image", pflag.ExitOnError)
	var (
		configPath  = fs.StringP("config", "c", defaultConfigPath, "Config file")
		output      = fs.StringP("output", "o", "", "Output file (.png or .bmp)")
		imagePath   = fs.StringP("image", "i", "", "Image to fit into the region")
		basePath    = fs.String("base", "", "Base image (default: configured base image)")
		overlayPath = fs.String("overlay", "", "Overlay image (default: configured overlay)")
		rect        = fs.IntSlice("rect", nil, "Region x1,y1,x2,y2 (default: configured region)")
		align       = fs.String("align", "center", "left, center or right")
		valign      = fs.String("valign", "middle", "top, middle or bottom")
		padding     = fs.Int("padding", -1, "Inset from the region edges (default: padding)")
		noUpscale   = fs.Bool("no-upscale", false, "Never enlarge the image")
		noAlpha     = fs.Bool("no-alpha", false, "Paste opaquely, ignoring the image's alpha channel")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("output file is required (-o)")
	}
	if *imagePath == "" {
		return fmt.Errorf("--image is required")
	}

	cfg, _, err := setup(*configPath)
	if err != nil {
		return err
	}
	c, err := compose.New(cfg)
	if err != nil {
		return err
	}

	opts := render.ImageOptions{
		Padding:      cfg.Padding,
		AllowUpscale: !*noUpscale,
		KeepAlpha:    !*noAlpha,
	}
	if *padding >= 0 {
		opts.Padding = *padding
	}
	if opts.Align, err = layout.ParseAlign(*align); err != nil {
		return err
	}
	if opts.VAlign, err = layout.ParseVAlign(*valign); err != nil {
		return err
	}

	r, err := rectFlag(*rect, cfg)
	if err != nil {
		return err
	}
	content, err := render.LoadImage(*imagePath)
	if err != nil {
		return err
	}
	base, overlay, err := canvasImages(c, *basePath, *overlayPath)
	if err != nil {
		return err
	}

	data, err := render.PasteImageAuto(base, content, overlay, r, opts)
	if err != nil {
		return err
	}
	return writeOutput(*output, data)
}

func runCompose(args []string) error {
	fs := pflag.NewFlagSet("compose", pflag.ExitOnError)
	var (
		configPath = fs.StringP("config", "c", defaultConfigPath, "Config file")
		output     = fs.StringP("output", "o", "", "Output file (.png or .bmp)")
		text       = fs.StringP("text", "t", "", "Text; a mapped keyword in it selects the base image")
		imagePath  = fs.StringP("image", "i", "", "Image to place next to or above the text")
		emotion    = fs.StringP("emotion", "e", "", "Emotion tag selecting the base image")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("output file is required (-o)")
	}

	cfg, _, err := setup(*configPath)
	if err != nil {
		return err
	}
	c, err := compose.New(cfg)
	if err != nil {
		return err
	}
	if *emotion != "" {
		c.SwitchEmotion(*emotion)
	}

	var img image.Image
	if *imagePath != "" {
		if img, err = render.LoadImage(*imagePath); err != nil {
			return err
		}
	}

	data, err := c.Compose(*text, img)
	if err != nil {
		return err
	}
	return writeOutput(*output, data)
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", defaultConfigPath, "Config file")
	listen := fs.StringP("listen", "l", "", "Listen address (default: listen)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(*configPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	c, err := compose.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, c, logger).ListenAndServe(ctx, cfg.Listen)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`fitbox - Auto-fit text and images into a region of a base image

USAGE:
    fitbox init [--config <path>] [--force]
    fitbox text -o <file> [options] <text | ->
    fitbox image -o <file> --image <path> [options]
    fitbox compose -o <file> [--text <text>] [--image <path>] [--emotion <tag>]
    fitbox serve [--listen :8080]

COMMON:
    -c, --config <path>      Config file (default: config/config.yaml)
    -o, --output <path>      Output file (.png or .bmp)
    --base <path>            Base image instead of the configured one
    --overlay <path>         Overlay image instead of the configured one
    --rect x1,y1,x2,y2       Region instead of the configured one
    --align <a>              left, center or right (default: center)
    --valign <v>             top, middle or bottom (default: middle)

TEXT:
    --color <hex>            Text color
    --bracket-color <hex>    Color of [..] and 【..】 groups
    --max-font-height <px>   Largest font size tried
    --line-spacing <f>       Extra leading, fraction of the line height
    --wrap <algo>            original (greedy) or knuth_plass (optimal)

IMAGE:
    -i, --image <path>       Image to fit
    --padding <px>           Inset from the region edges
    --no-upscale             Never enlarge the image
    --no-alpha               Ignore the image's alpha channel

EXAMPLES:
    fitbox init
    fitbox text -o out.png "Hello 【World】"
    echo "long text" | fitbox text -o out.png --wrap knuth_plass -
    fitbox image -o out.png -i photo.jpg --no-upscale
    fitbox compose -o out.png -t "#happy# see this" -i photo.png
    fitbox serve --listen :9000
`)
}

// fit.go - Choose the largest font size whose wrapped text fits a region.
package layout

// FitOptions controls FitText.
type FitOptions struct {
	MaxFontHeight int           // upper bound for the font size; <= 0 means the region height
	LineSpacing   float64       // extra leading as a fraction of ascent+descent
	Wrap          WrapAlgorithm // line breaker
}

// FitResult is the configuration chosen by FitText.
type FitResult struct {
	FontSize    int
	Face        Face // the face loaded at FontSize
	Lines       []string
	LineHeight  int
	BlockWidth  int // widest line, whole pixels
	BlockHeight int // LineHeight × max(1, len(Lines))
	Fits        bool
}

// FitText binary-searches font sizes in [1, hi], hi being the region height
// capped by opts.MaxFontHeight, for the largest size at which the wrapped
// text fits r in both directions.
//
// When no size fits, the result is size 1 with whatever lines that produces
// and Fits set to false. This is not an error; the renderer truncates lines
// that overflow. Only an invalid rectangle or a face that cannot be loaded
// at all is reported.
func FitText(text string, r Rect, opts FitOptions, loader FaceLoader) (FitResult, error) {
	if err := r.Validate(); err != nil {
		return FitResult{}, err
	}

	hi := r.Height()
	if opts.MaxFontHeight > 0 {
		hi = min(hi, opts.MaxFontHeight)
	}

	fits := func(size int) bool {
		res, err := measureBlock(text, r, size, opts, loader)
		return err == nil && res.Fits
	}

	size, ok := LargestFit(1, hi, fits)
	if !ok {
		size = 1
	}
	return measureBlock(text, r, size, opts, loader)
}

// measureBlock wraps text at one font size and measures the resulting block.
func measureBlock(text string, r Rect, size int, opts FitOptions, loader FaceLoader) (FitResult, error) {
	face, err := loader.LoadFace(size)
	if err != nil {
		return FitResult{}, err
	}

	lines := Wrap(opts.Wrap, text, face, float64(r.Width()))

	width := 0
	for _, line := range lines {
		width = max(width, int(face.Measure(line)))
	}
	lineHeight := LineHeight(face, opts.LineSpacing)
	height := max(lineHeight*max(1, len(lines)), 1)

	return FitResult{
		FontSize:    size,
		Face:        face,
		Lines:       lines,
		LineHeight:  lineHeight,
		BlockWidth:  width,
		BlockHeight: height,
		Fits:        width <= r.Width() && height <= r.Height(),
	}, nil
}

package layout

// Measurer reports the rendered advance width of a string in pixels.
// Implementations must be deterministic for a given font and size.
type Measurer interface {
	Measure(s string) float64
}

// Face is a font loaded at one pixel size.
type Face interface {
	Measurer
	// Ascent is the distance from the top of a line to its baseline, in pixels.
	Ascent() int
	// Descent is the distance from the baseline to the bottom of a line, in pixels.
	Descent() int
}

// FaceLoader loads a font at the given pixel size.
type FaceLoader interface {
	LoadFace(size int) (Face, error)
}

// FaceLoaderFunc adapts an ordinary function to FaceLoader.
type FaceLoaderFunc func(size int) (Face, error)

// LoadFace calls f(size).
func (f FaceLoaderFunc) LoadFace(size int) (Face, error) { return f(size) }

// LineHeight returns (ascent+descent)*(1+spacing), truncated to whole pixels.
func LineHeight(f Face, spacing float64) int {
	return int(float64(f.Ascent()+f.Descent()) * (1 + spacing))
}

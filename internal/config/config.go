package config

import "fmt"

// Run modes of cmd/scrollscene
const (
	ModePreview  = "preview"
	ModeExport   = "export"
	ModeScenario = "scenario"
)

type Config struct {
	Mode         string
	ScenarioPath string
	Preset       string

	// Page geometry the scroll offset is measured against
	ViewportHeight float64
	DocumentHeight float64

	Width    int
	Height   int
	FPS      int
	Duration float64
	Workers  int

	OutputVideo  string
	BackdropPath string
	DPI          int
	VideoEncoder string
	Quality      int
	EdgeGlyphs   bool
	SiteURL      string

	ShowStats    bool
	BuildVersion string
}

// ScrollableHeight is the document height minus one viewport
func (c *Config) ScrollableHeight() float64 {
	return c.DocumentHeight - c.ViewportHeight
}

// FrameCount is the number of frames an export renders
func (c *Config) FrameCount() int {
	n := int(c.Duration * float64(c.FPS))
	if n < 1 {
		return 1
	}
	return n
}

// Validate checks values the engine cannot recover from
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePreview, ModeExport, ModeScenario:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport height must be positive, got %v", c.ViewportHeight)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Mode == ModeExport {
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height)
		}
		if c.Width%2 != 0 || c.Height%2 != 0 {
			return fmt.Errorf("frame size %dx%d must be even for yuv420p", c.Width, c.Height)
		}
		if c.Duration <= 0 {
			return fmt.Errorf("duration must be positive, got %v", c.Duration)
		}
	}
	return nil
}

// FrameParams locates one frame of an export
type FrameParams struct {
	FPS   int
	Index int
}

// Time is the presentation time of the frame in seconds
func (p FrameParams) Time() float64 {
	if p.FPS <= 0 {
		return 0
	}
	return float64(p.Index) / float64(p.FPS)
}

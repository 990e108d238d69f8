// Package export turns the current canvas view into downloadable files:
// the SVG document as-is, or a PNG rasterized from it.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RenderError wraps a failed PNG conversion. SVG export cannot fail this
// way; it writes the document verbatim.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render png: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// SVGSource produces the current view as a standalone SVG document.
type SVGSource interface {
	RenderSVG() string
}

// Service exports the canvas view.
type Service struct {
	source SVGSource
	width  int
	height int
	log    zerolog.Logger
}

// New creates an export service rendering at the given pixel dimensions.
func New(source SVGSource, width, height int, log zerolog.Logger) *Service {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 800
	}
	return &Service{
		source: source,
		width:  width,
		height: height,
		log:    log.With().Str("component", "export").Logger(),
	}
}

// Filename returns the download filename for a snapshot and format, e.g.
// "topology-prod.svg".
func Filename(snapshot, format string) string {
	if snapshot == "" {
		snapshot = "snapshot"
	}
	return fmt.Sprintf("topology-%s.%s", snapshot, format)
}

// ExportSVG writes the current view as an SVG document.
func (s *Service) ExportSVG(w io.Writer) error {
	_, err := io.WriteString(w, s.source.RenderSVG())
	return err
}

// ExportPNG rasterizes the current view onto a white background and writes
// it as a PNG. Conversion failures surface as RenderError.
func (s *Service) ExportPNG(w io.Writer) error {
	doc := s.source.RenderSVG()

	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		s.log.Error().Err(err).Msg("svg parse failed during png export")
		return &RenderError{Err: err}
	}
	icon.SetTarget(0, 0, float64(s.width), float64(s.height))

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(s.width, s.height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(s.width, s.height, scanner), 1)

	if err := png.Encode(w, img); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

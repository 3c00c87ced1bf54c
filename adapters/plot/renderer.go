// Package plot draws wedge histograms and the reference scatter with gonum/plot.
package plot

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"geolr/domain/evidence"
	"geolr/internal"
	"geolr/ports"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Config controls image output
type Config struct {
	OutputDir string
	// BinWidth is the histogram bin width in meters
	BinWidth float64
	// MinRange is the smallest distance axis drawn, in meters
	MinRange float64
	Width    vg.Length
	Height   vg.Length
}

func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		BinWidth:  5,
		MinRange:  160,
		Width:     6 * vg.Inch,
		Height:    4 * vg.Inch,
	}
}

var (
	wedgeFill     = color.Gray{Y: 169} // darkgray
	evidenceColor = color.RGBA{R: 255, A: 255}
	palette       = []color.Color{color.Gray{Y: 169}, color.Gray{Y: 105}, color.Gray{Y: 60}}
)

// Renderer writes PNG images into the output directory
type Renderer struct {
	config Config
	logger *internal.Logger
}

var _ ports.Renderer = (*Renderer)(nil)

func NewRenderer(config Config) *Renderer {
	if config.BinWidth <= 0 {
		config.BinWidth = DefaultConfig().BinWidth
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = DefaultConfig().Width, DefaultConfig().Height
	}
	return &Renderer{config: config, logger: internal.DefaultLogger}
}

// SetLogger routes progress lines through l; nil keeps internal.DefaultLogger
func (r *Renderer) SetLogger(l *internal.Logger) {
	if l != nil {
		r.logger = l
	}
}

// WedgeFilename is the histogram file name for a candidate label
func WedgeFilename(label string) string {
	return "hist_Wedge" + sanitize(label) + ".png"
}

// SceneFilename is the scatter plot file name
const SceneFilename = "Scatter.png"

// RenderWedge draws the wedge distances as a density histogram with fixed
// width bins from zero and marks the evidence distance
func (r *Renderer) RenderWedge(ctx context.Context, label string, wedge evidence.Wedge, evidenceDistance float64) ([]string, error) {
	if wedge.IsEmpty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Wedge distances from %s (n=%d)", label, wedge.Count)
	p.X.Label.Text = "distance (m)"
	p.Y.Label.Text = "density"

	hist := r.histogram(wedge.Distances, evidenceDistance)
	p.Add(hist)

	top := 0.15
	for _, b := range hist.Bins {
		top = math.Max(top, b.Weight)
	}
	marker, err := plotter.NewLine(plotter.XYs{{X: evidenceDistance, Y: 0}, {X: evidenceDistance, Y: top}})
	if err != nil {
		return nil, err
	}
	marker.Color = evidenceColor
	marker.Width = vg.Points(1.5)
	p.Add(marker)
	p.Legend.Add("wedge", hist)
	p.Legend.Add("evidence", marker)
	p.X.Min = 0

	path, err := r.save(p, WedgeFilename(label))
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// histogram bins xs into BinWidth buckets over [0, max(MinRange, xs, evidence)]
// and normalizes the bars to unit area
func (r *Renderer) histogram(xs []float64, evidenceDistance float64) *plotter.Histogram {
	w := r.config.BinWidth
	upper := math.Max(r.config.MinRange, evidenceDistance)
	for _, x := range xs {
		upper = math.Max(upper, x)
	}
	n := int(math.Ceil(upper/w)) + 1

	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: float64(i) * w, Max: float64(i+1) * w}
	}
	for _, x := range xs {
		i := int(math.Floor(x / w))
		if i >= 0 && i < n {
			bins[i].Weight++
		}
	}

	h := &plotter.Histogram{
		Bins:      bins,
		Width:     w,
		FillColor: wedgeFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.Normalize(1)
	return h
}

// RenderScene draws every reference fix of every candidate, the candidate
// points and the evidence point
func (r *Renderer) RenderScene(ctx context.Context, scene ports.Scene) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Reference fixes"
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	var labels plotter.XYLabels
	for i, c := range scene.Candidates {
		shade := palette[i%len(palette)]
		if c.Reference != nil && !c.Reference.IsEmpty() {
			pts := make(plotter.XYs, 0, c.Reference.Len())
			for _, rec := range c.Reference.Records {
				pts = append(pts, plotter.XY{X: rec.Point.Longitude, Y: rec.Point.Latitude})
			}
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, err
			}
			s.GlyphStyle.Shape = draw.CrossGlyph{}
			s.GlyphStyle.Color = shade
			s.GlyphStyle.Radius = vg.Points(3)
			p.Add(s)
			p.Legend.Add(c.Label+" reference", s)
		}

		pt, err := plotter.NewScatter(plotter.XYs{{X: c.Point.Longitude, Y: c.Point.Latitude}})
		if err != nil {
			return nil, err
		}
		pt.GlyphStyle.Shape = draw.CircleGlyph{}
		pt.GlyphStyle.Color = shade
		pt.GlyphStyle.Radius = vg.Points(3.5)
		p.Add(pt)
		p.Legend.Add(c.Label, pt)

		labels.XYs = append(labels.XYs, plotter.XY{X: c.Point.Longitude + 0.00002, Y: c.Point.Latitude})
		labels.Labels = append(labels.Labels, c.Label)
	}

	ev, err := plotter.NewScatter(plotter.XYs{{X: scene.Evidence.Longitude, Y: scene.Evidence.Latitude}})
	if err != nil {
		return nil, err
	}
	ev.GlyphStyle.Shape = draw.CircleGlyph{}
	ev.GlyphStyle.Color = color.Black
	ev.GlyphStyle.Radius = vg.Points(3.5)
	p.Add(ev)
	evLabel := scene.EvidenceLabel
	if evLabel == "" {
		evLabel = "E"
	}
	p.Legend.Add(evLabel, ev)
	labels.XYs = append(labels.XYs, plotter.XY{X: scene.Evidence.Longitude - 0.0001, Y: scene.Evidence.Latitude - 0.00005})
	labels.Labels = append(labels.Labels, evLabel)

	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	p.Add(annotations)

	path, err := r.save(p, SceneFilename)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(r.config.OutputDir, name)
	if err := p.Save(r.config.Width, r.config.Height, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	r.logger.Info("[PlotRenderer] wrote %s", path)
	return path, nil
}

func sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
}

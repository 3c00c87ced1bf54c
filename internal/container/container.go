package container

import (
	"fmt"
	"log"
	"strings"

	"geolr/adapters/excel"
	"geolr/adapters/geojson"
	"geolr/adapters/nmea"
	"geolr/adapters/plot"
	"geolr/adapters/report"
	"geolr/app"
	"geolr/domain/geo"
	"geolr/internal"
	"geolr/internal/config"
	"geolr/internal/errors"
	"geolr/internal/likelihood"
	"geolr/ports"
)

// Container holds all application dependencies for one run
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	Engine *likelihood.Engine

	// Adapters
	Sources   [2]ports.ReferenceSource
	Renderers []ports.Renderer
	Writers   []ports.ReportWriter

	// Services
	LikelihoodService *app.LikelihoodService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level)),
	}
	internal.DefaultLogger.SetLevel(c.Logger.GetLevel())

	c.Engine = likelihood.NewEngine(EngineOptions(cfg.Analysis), c.Logger)

	if err := c.initSources(); err != nil {
		return nil, fmt.Errorf("failed to initialize reference sources: %w", err)
	}
	if err := c.initOutputs(); err != nil {
		return nil, fmt.Errorf("failed to initialize outputs: %w", err)
	}

	c.applyLogger()

	first, second := cfg.Candidates.First, cfg.Candidates.Second
	c.LikelihoodService = app.NewLikelihoodService(c.Engine, Point(cfg.Evidence),
		app.CandidateSource{Label: first.Label, Point: Point(first.Point), Source: c.Sources[0]},
		app.CandidateSource{Label: second.Label, Point: Point(second.Point), Source: c.Sources[1]},
		c.Renderers, c.Writers, c.Logger)

	log.Printf("Container initialized: %d sources, %d renderers, %d report writers",
		len(c.Sources), len(c.Renderers), len(c.Writers))
	return c, nil
}

// loggerSetter is implemented by adapters that report progress
type loggerSetter interface {
	SetLogger(*internal.Logger)
}

// applyLogger hands the configured logger to every adapter so the log level
// applies to reader, renderer and writer lines alike
func (c *Container) applyLogger() {
	var adapters []interface{}
	for _, s := range c.Sources {
		adapters = append(adapters, s)
	}
	for _, r := range c.Renderers {
		adapters = append(adapters, r)
	}
	for _, w := range c.Writers {
		adapters = append(adapters, w)
	}
	for _, a := range adapters {
		if ls, ok := a.(loggerSetter); ok {
			ls.SetLogger(c.Logger)
		}
	}
}

// EngineOptions maps the analysis section onto likelihood engine options
func EngineOptions(a config.AnalysisConfig) likelihood.Options {
	opts := likelihood.DefaultOptions()
	opts.Wedge.HalfWidth = a.HalfWidth
	opts.Wedge.WrapBearings = a.WrapBearings
	opts.StrictRatio = a.StrictRatio
	if a.MinDistinct > 0 {
		opts.Fit.MinDistinct = a.MinDistinct
	}
	return opts
}

// Point converts a configured position
func Point(p config.PointConfig) geo.GeoPoint {
	return geo.NewGeoPoint(p.Longitude, p.Latitude)
}

// NewSource builds the reference source for one candidate's reference section
func NewSource(ref config.ReferenceConfig, debug bool) (ports.ReferenceSource, error) {
	switch format := ref.ResolvedFormat(); format {
	case "xlsx", "csv":
		return excel.NewReferenceReader(excel.SourceConfig{
			FilePath: ref.Path,
			Sheet:    ref.Sheet,
			SkipRows: ref.SkipRows,
			Columns: excel.ColumnLayout{
				ID:        ref.Columns.ID,
				Name:      ref.Columns.Name,
				Latitude:  ref.Columns.Latitude,
				Longitude: ref.Columns.Longitude,
			},
		}), nil
	case "nmea":
		r := nmea.NewLogReader(nmea.LogConfig{FilePath: ref.Path, IncludeRMC: ref.IncludeRMC, Strict: ref.Strict})
		r.SetDebug(debug)
		return r, nil
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported reference format %q", format))
	}
}

// initSources creates one reference source per candidate
func (c *Container) initSources() error {
	debug := c.Logger.GetLevel() >= internal.LogLevelDebug
	for i, cand := range []config.CandidateConfig{c.Config.Candidates.First, c.Config.Candidates.Second} {
		src, err := NewSource(cand.Reference, debug)
		if err != nil {
			return errors.Wrapf(err, "candidate %s", cand.Label)
		}
		c.Sources[i] = src
	}
	return nil
}

// initOutputs creates renderers and report writers selected by the output section
func (c *Container) initOutputs() error {
	out := c.Config.Output
	if out.Plots {
		pc := plot.DefaultConfig()
		pc.OutputDir = out.Dir
		c.Renderers = append(c.Renderers, plot.NewRenderer(pc))
	}
	if out.GeoJSON {
		c.Renderers = append(c.Renderers, geojson.NewExporter(out.Dir))
	}

	formats := make([]string, 0, len(out.Reports))
	for _, f := range out.Reports {
		formats = append(formats, strings.ToLower(strings.TrimSpace(f)))
	}
	writers, err := report.NewWriters(out.Dir, formats)
	if err != nil {
		return err
	}
	c.Writers = writers
	return nil
}

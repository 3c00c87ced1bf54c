package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"geolr/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: GEOLR_ANALYSIS_HALF_WIDTH → analysis.half_width
const EnvPrefix = "GEOLR"

// DefaultConfigName is looked up in the working directory when no file is given
const DefaultConfigName = "geolr"

// Config represents the complete application configuration
type Config struct {
	Analysis   AnalysisConfig   `mapstructure:"analysis" json:"analysis" yaml:"analysis"`
	Evidence   PointConfig      `mapstructure:"evidence" json:"evidence" yaml:"evidence"`
	Candidates CandidatesConfig `mapstructure:"candidates" json:"candidates" yaml:"candidates"`
	Output     OutputConfig     `mapstructure:"output" json:"output" yaml:"output"`
	Logging    LoggingConfig    `mapstructure:"logging" json:"logging" yaml:"logging"`
}

// AnalysisConfig holds the likelihood engine settings
type AnalysisConfig struct {
	// HalfWidth of the angular wedge in radians
	HalfWidth    float64 `mapstructure:"half_width" json:"half_width" yaml:"half_width" validate:"gt=0,lte=3.141592653589793"`
	WrapBearings bool    `mapstructure:"wrap_bearings" json:"wrap_bearings" yaml:"wrap_bearings"`
	StrictRatio  bool    `mapstructure:"strict_ratio" json:"strict_ratio" yaml:"strict_ratio"`
	MinDistinct  int     `mapstructure:"min_distinct" json:"min_distinct" yaml:"min_distinct" validate:"gte=2"`
}

// PointConfig is a WGS84 position in degrees
type PointConfig struct {
	Longitude float64 `mapstructure:"lon" json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	Latitude  float64 `mapstructure:"lat" json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
}

// CandidatesConfig holds the two hypothesised origins; the ratio is First over Second
type CandidatesConfig struct {
	First  CandidateConfig `mapstructure:"first" json:"first" yaml:"first"`
	Second CandidateConfig `mapstructure:"second" json:"second" yaml:"second"`
}

// CandidateConfig is one candidate origin and its reference data
type CandidateConfig struct {
	Label     string          `mapstructure:"label" json:"label" yaml:"label" validate:"required"`
	Point     PointConfig     `mapstructure:",squash" json:"point" yaml:"point"`
	Reference ReferenceConfig `mapstructure:"reference" json:"reference" yaml:"reference"`
}

// ReferenceConfig locates a reference dataset
type ReferenceConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path" validate:"required"`
	// Format is inferred from the extension when empty
	Format   string        `mapstructure:"format" json:"format" yaml:"format" validate:"omitempty,oneof=xlsx csv nmea"`
	Sheet    string        `mapstructure:"sheet" json:"sheet" yaml:"sheet"`
	SkipRows int           `mapstructure:"skip_rows" json:"skip_rows" yaml:"skip_rows" validate:"gte=0"`
	Columns  ColumnsConfig `mapstructure:"columns" json:"columns" yaml:"columns"`
	// NMEA only
	IncludeRMC bool `mapstructure:"include_rmc" json:"include_rmc" yaml:"include_rmc"`
	Strict     bool `mapstructure:"strict" json:"strict" yaml:"strict"`
}

// ColumnsConfig holds zero-based column positions of tabular references
type ColumnsConfig struct {
	ID        int `mapstructure:"id" json:"id" yaml:"id" validate:"gte=0"`
	Name      int `mapstructure:"name" json:"name" yaml:"name" validate:"gte=0"`
	Latitude  int `mapstructure:"lat" json:"lat" yaml:"lat" validate:"gte=0"`
	Longitude int `mapstructure:"lon" json:"lon" yaml:"lon" validate:"gte=0"`
}

// OutputConfig selects the artifacts of a run
type OutputConfig struct {
	Dir     string   `mapstructure:"dir" json:"dir" yaml:"dir" validate:"required"`
	Plots   bool     `mapstructure:"plots" json:"plots" yaml:"plots"`
	GeoJSON bool     `mapstructure:"geojson" json:"geojson" yaml:"geojson"`
	Reports []string `mapstructure:"reports" json:"reports" yaml:"reports" validate:"dive,oneof=json yaml markdown html"`
}

// LoggingConfig holds the log level name
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level" validate:"omitempty,oneof=error warn info debug trace ERROR WARN INFO DEBUG TRACE"`
}

// ResolvedFormat returns the configured format or the one implied by the file extension
func (r ReferenceConfig) ResolvedFormat() string {
	if r.Format != "" {
		return r.Format
	}
	switch strings.ToLower(filepath.Ext(r.Path)) {
	case ".csv":
		return "csv"
	case ".nmea", ".log", ".txt":
		return "nmea"
	default:
		return "xlsx"
	}
}

// SetDefaults registers the case-file constants as defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("analysis.half_width", math.Pi/6)
	v.SetDefault("analysis.wrap_bearings", false)
	v.SetDefault("analysis.strict_ratio", true)
	v.SetDefault("analysis.min_distinct", 2)

	v.SetDefault("evidence.lon", 6.57394444444444)
	v.SetDefault("evidence.lat", 46.5213305555556)

	setCandidateDefaults(v, "candidates.first", "P1", 6.573832039, 46.521592273, "Report_P1.xlsx")
	setCandidateDefaults(v, "candidates.second", "P2", 6.575116326, 46.521954786, "Report_P2.xlsx")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.plots", true)
	v.SetDefault("output.geojson", false)
	v.SetDefault("output.reports", []string{})

	v.SetDefault("logging.level", "info")
}

func setCandidateDefaults(v *viper.Viper, key, label string, lon, lat float64, path string) {
	v.SetDefault(key+".label", label)
	v.SetDefault(key+".lon", lon)
	v.SetDefault(key+".lat", lat)
	v.SetDefault(key+".reference.path", path)
	v.SetDefault(key+".reference.format", "")
	v.SetDefault(key+".reference.sheet", "")
	v.SetDefault(key+".reference.skip_rows", 0)
	v.SetDefault(key+".reference.columns.id", 0)
	v.SetDefault(key+".reference.columns.name", 1)
	v.SetDefault(key+".reference.columns.lat", 9)
	v.SetDefault(key+".reference.columns.lon", 10)
	v.SetDefault(key+".reference.include_rmc", false)
	v.SetDefault(key+".reference.strict", false)
}

// NewViper returns a viper instance with defaults and GEOLR_ environment overrides.
// Callers may bind command-line flags on it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from v, merging the YAML file at path. An empty path
// looks for geolr.yaml in the working directory and tolerates its absence.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.NotFound("config file " + path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read config file %s", path))
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to read config file"))
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to decode configuration"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without consulting files or the environment
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

var validate = validator.New()

// Validate checks field ranges and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Namespace()+" failed "+fe.Tag())
			}
			return errors.ConfigInvalid("configuration validation failed: " + strings.Join(msgs, "; "))
		}
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Candidates.First.Label == c.Candidates.Second.Label {
		return errors.ConfigInvalid("candidate labels must differ, both are " + c.Candidates.First.Label)
	}
	return nil
}

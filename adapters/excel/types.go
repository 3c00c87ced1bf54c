package excel

// ColumnLayout names the zero-based column positions of a reference sheet
type ColumnLayout struct {
	ID        int `json:"id" mapstructure:"id"`
	Name      int `json:"name" mapstructure:"name"`
	Latitude  int `json:"lat" mapstructure:"lat"`
	Longitude int `json:"lon" mapstructure:"lon"`
}

// DefaultColumnLayout matches the location report export: id, name, ..., lat (J), long (K)
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{ID: 0, Name: 1, Latitude: 9, Longitude: 10}
}

// SourceConfig describes one tabular reference file
type SourceConfig struct {
	FilePath string `json:"file_path"`
	// Sheet defaults to the first sheet of the workbook
	Sheet string `json:"sheet"`
	// SkipRows drops data rows directly after the header
	SkipRows int          `json:"skip_rows"`
	Columns  ColumnLayout `json:"columns"`
}

// DefaultSourceConfig returns defaults for path
func DefaultSourceConfig(path string) SourceConfig {
	return SourceConfig{FilePath: path, Columns: DefaultColumnLayout()}
}

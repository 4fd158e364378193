package types

// DepictBackend identifies the structure-depiction engine.
type DepictBackend string

const (
	BackendBuiltin   DepictBackend = "builtin"
	BackendContainer DepictBackend = "container"
)

// VisualizeConfig holds settings for the visualization stage.
type VisualizeConfig struct {
	// Enabled turns structure rendering on (default true).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Backend selects the depiction engine: builtin or container.
	Backend DepictBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// ImagesDir is the directory the PNG surface writes into (default "structures").
	ImagesDir string `json:"images_dir" yaml:"images_dir" mapstructure:"images_dir"`

	// Width and Height are the image size in pixels (default 300x300).
	Width  int `json:"width" yaml:"width" mapstructure:"width"`
	Height int `json:"height" yaml:"height" mapstructure:"height"`

	// ContainerImage is the renderer image used by the container backend.
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`
}

// OutputConfig holds settings for the writer stage.
type OutputConfig struct {
	// Dir is the directory the merged CSV is written to (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// PublishDriver identifies the blob store the merged CSV is uploaded to.
type PublishDriver string

const (
	PublishNone       PublishDriver = ""
	PublishFilesystem PublishDriver = "fs"
	PublishS3         PublishDriver = "s3"
)

// PublishConfig holds settings for the optional upload of the merged CSV.
type PublishConfig struct {
	// Driver selects the store: "" (disabled), fs, or s3.
	Driver PublishDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Prefix is prepended to the object key (e.g. "cdd/uploads").
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// Root is the directory used by the fs driver.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Bucket, Region, Endpoint, and PathStyle configure the s3 driver.
	// Endpoint and PathStyle are only needed for MinIO-style servers.
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Region    string `json:"region" yaml:"region" mapstructure:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	PathStyle bool   `json:"path_style" yaml:"path_style" mapstructure:"path_style"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// Enabled records each successful run (default false).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir contains history.db (default ".cddprep").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error (default "warn").
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all stage configurations for one run.
type Config struct {
	Visualize VisualizeConfig `json:"visualize" yaml:"visualize" mapstructure:"visualize"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
	Publish   PublishConfig   `json:"publish" yaml:"publish" mapstructure:"publish"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings that reproduce the plain four-stage run.
func DefaultConfig() Config {
	return Config{
		Visualize: VisualizeConfig{
			Enabled:        true,
			Backend:        BackendBuiltin,
			ImagesDir:      "structures",
			Width:          300,
			Height:         300,
			ContainerImage: "cddprep-rdkit-depict:latest",
		},
		Output:  OutputConfig{Dir: "."},
		History: HistoryConfig{Dir: ".cddprep"},
		Log:     LogConfig{Level: "warn"},
	}
}

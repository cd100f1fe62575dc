package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/livp123/wowclp/internal/utils/fileutil"
	"github.com/livp123/wowclp/internal/utils/logger"
	errs "github.com/livp123/wowclp/pkg/errors"
)

// Config is the full wowclp configuration file.
// Config 是完整的 wowclp 配置文件。
type Config struct {
	Logging logger.LoggingConfig `yaml:"logging"`
	Parser  ParserConfig         `yaml:"parser"`
	Output  OutputConfig         `yaml:"output"`
	Tail    TailConfig           `yaml:"tail"`
	Metrics MetricsConfig        `yaml:"metrics"`
	Filter  FilterConfig         `yaml:"filter"`
}

// ParserConfig controls decoding.
// ParserConfig 控制解码行为。
type ParserConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
	// Year is applied to timestamps; 0 means the input file's mtime year.
	Year     int    `yaml:"year"`
	Timezone string `yaml:"timezone"`
	// SchemaFile extends the built-in event vocabulary.
	SchemaFile string `yaml:"schema_file"`
	// NilDefaults maps field names to absent, false or zero.
	NilDefaults map[string]string `yaml:"nil_defaults"`
	StrictArity bool              `yaml:"strict_arity"`
}

// OutputConfig controls how records are written.
type OutputConfig struct {
	Format        string `yaml:"format"` // json, text
	Path          string `yaml:"path"`   // empty means stdout
	IncludeErrors bool   `yaml:"include_errors"`
	Color         bool   `yaml:"color"`
}

// TailConfig controls live following.
type TailConfig struct {
	// Position is start, end or checkpoint.
	Position       string `yaml:"position"`
	CheckpointFile string `yaml:"checkpoint_file"`
	Poll           bool   `yaml:"poll"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// FilterConfig holds the default record filter.
type FilterConfig struct {
	Expression string `yaml:"expression"`
}

// DefaultConfig returns the built-in defaults.
// DefaultConfig 返回内置默认配置。
func DefaultConfig() *Config {
	return &Config{
		Logging: logger.DefaultLoggingConfig(),
		Parser: ParserConfig{
			Workers:   DefaultWorkers,
			BatchSize: DefaultBatchSize,
			Timezone:  "Local",
		},
		Output: OutputConfig{
			Format:        "json",
			IncludeErrors: true,
			Color:         true,
		},
		Tail: TailConfig{
			Position:       "end",
			CheckpointFile: DefaultCheckpointFile,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetrics,
		},
	}
}

// Load reads a config file over the defaults. A missing file is not an
// error and yields the defaults.
// Load 在默认值之上读取配置文件。文件不存在时不报错，返回默认值。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	safePath := filepath.Clean(path)
	data, err := os.ReadFile(safePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errs.NewFileError(safePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.NewConfigError("yaml", err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
// Save 将配置写为 YAML。
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(filepath.Clean(path), data, 0644)
}

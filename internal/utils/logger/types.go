package logger

// LoggingConfig defines the configuration for diagnostic logging.
// LoggingConfig 定义诊断日志配置。
type LoggingConfig struct {
	// Enabled turns on file output at Path; otherwise logs go to stderr.
	// Enabled: 是否写入文件，否则输出到 stderr
	Enabled bool `yaml:"enabled"`
	// Level: debug, info, warn, error
	Level string `yaml:"level"`
	// Path: 日志文件路径
	Path string `yaml:"path"`
	// MaxSize: 轮转前的最大大小（MB）
	MaxSize int `yaml:"max_size"`
	// MaxBackups: 保留的旧文件最大数量
	MaxBackups int `yaml:"max_backups"`
	// MaxAge: 保留旧文件的最大天数
	MaxAge int `yaml:"max_age"`
	// Compress: 是否压缩旧文件
	Compress bool `yaml:"compress"`
}

// DefaultLoggingConfig logs info and above to stderr.
// DefaultLoggingConfig 将 info 及以上级别输出到 stderr。
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		Path:       "wowclp.log",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
	}
}

package config

import "github.com/livp123/wowclp/internal/runtime"

const (
	// DefaultConfigPath is the config file looked up when none is given.
	// DefaultConfigPath 是未指定时查找的配置文件。
	DefaultConfigPath = "wowclp.yaml"

	// DefaultCheckpointFile stores tail offsets between runs.
	// DefaultCheckpointFile 保存 tail 在多次运行之间的偏移量。
	DefaultCheckpointFile = ".wowclp_checkpoint.json"

	DefaultWorkers   = 4
	DefaultBatchSize = 512
	DefaultMetrics   = "127.0.0.1:9109"
)

// Environment variables read after .env files are loaded.
// 加载 .env 文件后读取的环境变量。
const (
	EnvCombatLog = "WOWCLP_COMBATLOG"
	EnvLogLevel  = "WOWCLP_LOG_LEVEL"
	EnvConfig    = "WOWCLP_CONFIG"
)

// GetConfigPath returns the configuration file path.
// If runtime.ConfigPath is set (e.g., via CLI flag or test), it takes precedence.
// GetConfigPath 返回配置文件路径，runtime.ConfigPath 已设置时优先使用。
func GetConfigPath() string {
	if runtime.ConfigPath != "" {
		return runtime.ConfigPath
	}
	return DefaultConfigPath
}

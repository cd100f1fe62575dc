package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored and variables already set are left alone.
// LoadEnv 将 .env 文件读入进程环境，忽略不存在的文件，不覆盖已设置的变量。
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides config fields from WOWCLP_* variables.
// ApplyEnv 使用 WOWCLP_* 环境变量覆盖配置字段。
func (c *Config) ApplyEnv() {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Logging.Level = lvl
	}
}

// DefaultInput returns the combat log named by WOWCLP_COMBATLOG, if any.
// DefaultInput 返回 WOWCLP_COMBATLOG 指定的战斗日志。
func DefaultInput() string {
	return os.Getenv(EnvCombatLog)
}

// ResolveConfigPath picks the CLI flag, then WOWCLP_CONFIG, then the default.
// ResolveConfigPath 依次选择 CLI 标志、WOWCLP_CONFIG 和默认路径。
func ResolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return GetConfigPath()
}

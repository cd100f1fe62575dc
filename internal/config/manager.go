package config

import (
	"sync"
)

// ConfigManager handles all configuration-related operations in a centralized manner
// ConfigManager 以集中方式处理所有配置相关操作
type ConfigManager struct {
	configPath string
	mutex      sync.RWMutex
	config     *Config
}

// NewConfigManager creates a new configuration manager instance
// NewConfigManager 创建新的配置管理器实例
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads the configuration, applies environment overrides and
// validates it.
// LoadConfig 加载配置，应用环境变量覆盖并进行验证。
func (cm *ConfigManager) LoadConfig() (*ValidationResult, error) {
	cfg, err := Load(cm.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	result := cfg.Validate()
	if !result.Valid {
		return result, result.Err()
	}

	cm.mutex.Lock()
	cm.config = cfg
	cm.mutex.Unlock()
	return result, nil
}

// SaveConfig saves the current configuration to the specified path
// SaveConfig 将当前配置保存到指定路径
func (cm *ConfigManager) SaveConfig() error {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if cm.config == nil {
		return nil
	}
	return Save(cm.configPath, cm.config)
}

// GetConfig returns a copy of the current configuration, or the defaults
// when nothing was loaded.
// GetConfig 返回当前配置的副本，未加载时返回默认值。
func (cm *ConfigManager) GetConfig() *Config {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	if cm.config == nil {
		return DefaultConfig()
	}
	cfgCopy := *cm.config
	if cm.config.Parser.NilDefaults != nil {
		cfgCopy.Parser.NilDefaults = make(map[string]string, len(cm.config.Parser.NilDefaults))
		for k, v := range cm.config.Parser.NilDefaults {
			cfgCopy.Parser.NilDefaults[k] = v
		}
	}
	return &cfgCopy
}

// UpdateConfig updates the current configuration
// UpdateConfig 更新当前配置
func (cm *ConfigManager) UpdateConfig(newConfig *Config) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.config = newConfig
}

// GetConfigPath returns the path this manager reads and writes.
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

package core

import (
	"github.com/RecoveryAshes/GmgnXtract/internal/config"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
)

// SelectorManager 管理选择器配置的生命周期
// 站点改版时只需要改YAML, 不需要重新编译; 配置文件缺失或损坏时
// 降级到内置默认值, 选择器问题永远不会让一次运行失败
type SelectorManager struct {
	// configFile 配置文件路径
	configFile string

	// loader 配置文件加载器
	loader *config.SelectorLoader

	// active 当前生效的配置
	active *config.SelectorConfig

	// loaded 标记配置是否已加载
	loaded bool
}

// NewSelectorManager 创建选择器管理器
func NewSelectorManager(configFile string) *SelectorManager {
	return &SelectorManager{
		configFile: configFile,
		loader:     config.NewSelectorLoader(configFile),
	}
}

// Load 加载选择器配置
// 任何加载错误都降级到内置默认值并继续
func (sm *SelectorManager) Load() *config.SelectorConfig {
	if sm.loaded {
		return sm.active
	}

	cfg, err := sm.loader.LoadConfig()
	if err != nil {
		utils.Warnf("⚠️ 加载选择器配置失败, 使用内置默认值: %v", err)
		cfg = config.DefaultSelectorConfig()
	} else {
		utils.Debugf("选择器配置已加载: %s", sm.configFile)
	}

	sm.active = cfg
	sm.loaded = true
	return sm.active
}

// Current 当前生效的配置 (未加载时先加载)
func (sm *SelectorManager) Current() *config.SelectorConfig {
	if !sm.loaded {
		return sm.Load()
	}
	return sm.active
}

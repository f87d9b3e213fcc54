package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vitalscope/vitalscope/internal/domain"
)

// Default runtime settings seeded into sys_config on first boot.
var defaultSettings = []domain.SysConfig{
	{Type: "scheduler", Name: "max_workers", Value: "8", Remark: "concurrent site ingestions per sweep"},
	{Type: "scheduler", Name: "sweep_enabled", Value: "true", Remark: "enable the periodic site ingestion sweep"},
	{Type: "retention", Name: "days", Value: "365", Remark: "purge tests older than this many days, 0 keeps everything"},
}

// ConfigManager reads runtime settings from the sys_config table with a
// small read-through cache.
type ConfigManager struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]string
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db, cache: make(map[string]string)}
}

func (m *ConfigManager) GetString(category, name string) string {
	key := category + "/" + name
	m.mu.RLock()
	if v, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return v
	}
	m.mu.RUnlock()

	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	if err != nil {
		return ""
	}
	m.mu.Lock()
	m.cache[key] = cfg.Value
	m.mu.Unlock()
	return cfg.Value
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// Invalidate drops the cache so the next read hits the table.
func (m *ConfigManager) Invalidate() {
	m.mu.Lock()
	m.cache = make(map[string]string)
	m.mu.Unlock()
}

// checkSettings seeds missing default settings.
func (a *Application) checkSettings() {
	for _, def := range defaultSettings {
		var existing domain.SysConfig
		err := a.gormDB.Where("type = ? and name = ?", def.Type, def.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := def
			row.CreatedAt = time.Now()
			row.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&row).Error; err != nil {
				zap.L().Error("failed to seed default setting",
					zap.String("type", def.Type),
					zap.String("name", def.Name),
					zap.Error(err))
			}
		case err != nil:
			zap.L().Error("failed to query setting",
				zap.String("type", def.Type),
				zap.String("name", def.Name),
				zap.Error(err))
		}
	}
}

func defaultContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

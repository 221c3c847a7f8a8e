package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 未在配置文件中出现的项使用默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("analytics.stale_ttl", "1h")
	v.SetDefault("analytics.dedup_window_minutes", 60)
	v.SetDefault("analytics.refresh_timeout", "30s")
	v.SetDefault("analytics.workers", 8)
	v.SetDefault("analytics.queue_size", 1024)
	v.SetDefault("analytics.refresh_lock_ttl", "30s")
	v.SetDefault("analytics.dirty_sync_spec", "0 */5 * * * *")
	v.SetDefault("analytics.dirty_lock_ttl", "5m")

	v.SetDefault("geo.cache_size", 10000)
	v.SetDefault("geo.cache_ttl", "10m")
	v.SetDefault("geo.update_spec", "0 0 4 * * 3")
}

package config

import "time"

// Config 配置主体
type Config struct {
	Server                   ServerConfig       `mapstructure:"server"`
	DB                       DBConfig           `mapstructure:"database"`
	Redis                    RedisConfig        `mapstructure:"redis"`
	Logstash                 LogstashConfig     `mapstructure:"logstash"`
	JWT                      JWTConfig          `mapstructure:"jwt"`
	Geo                      GeoConfig          `mapstructure:"geo"`
	Analytics                AnalyticsConfig    `mapstructure:"analytics"`
	Kafka                    KafkaConfig        `mapstructure:"kafka"`
	KafkaViewConsumer        KafkaTopicConsumer `mapstructure:"kafka_view_consumer"`
	KafkaInteractionConsumer KafkaTopicConsumer `mapstructure:"kafka_interaction_consumer"`
	KafkaUserFollowsConsumer KafkaTopicConsumer `mapstructure:"kafka_user_follow_consumer"`
	KafkaContentConsumer     KafkaTopicConsumer `mapstructure:"kafka_content_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// GeoConfig IP 归属地数据集配置
type GeoConfig struct {
	DBPath      string        `mapstructure:"db_path"`
	DownloadURL string        `mapstructure:"download_url"`
	CacheSize   int           `mapstructure:"cache_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	UpdateSpec  string        `mapstructure:"update_spec"`
}

// AnalyticsConfig 聚合计算与去重策略
type AnalyticsConfig struct {
	StaleTTL           time.Duration `mapstructure:"stale_ttl"`
	DedupWindowMinutes int           `mapstructure:"dedup_window_minutes"`
	RefreshTimeout     time.Duration `mapstructure:"refresh_timeout"`
	Workers            int           `mapstructure:"workers"`
	QueueSize          int           `mapstructure:"queue_size"`
	RefreshLockTTL     time.Duration `mapstructure:"refresh_lock_ttl"`
	DirtySyncSpec      string        `mapstructure:"dirty_sync_spec"`
	DirtyLockTTL       time.Duration `mapstructure:"dirty_lock_ttl"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaTopicConsumer 单个 Canal 主题的消费配置
type KafkaTopicConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

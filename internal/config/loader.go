// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// ${VAR} 或 ${VAR:default}；子组依次为变量名、带冒号的默认值、默认值
var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 读取 configs/config.yaml 与 configs/config.<APP_ENV>.yaml
func Load() (*Config, error) {
	return LoadFrom("configs")
}

// LoadFrom 依次合并默认值、基础文件、环境文件与环境变量，两个文件都可缺省
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	prepare(v)

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	for _, name := range []string{"config.yaml", "config." + env + ".yaml"} {
		if err := loadConfigFile(v, filepath.Join(dir, name), true); err != nil {
			return nil, err
		}
	}
	return unmarshal(v)
}

// Bind 用于已绑定命令行参数的 viper，path 非空时该文件必须存在
//
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
func Bind(v *viper.Viper, path string) (*Config, error) {
	prepare(v)
	if path != "" {
		if err := loadConfigFile(v, path, false); err != nil {
			return nil, err
		}
	}
	return unmarshal(v)
}

func prepare(v *viper.Viper) {
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// loadConfigFile 展开占位符后读入，第一个文件之后的都走 MergeConfig
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	r := strings.NewReader(expandEnv(string(raw)))
	if v.ConfigFileUsed() != "" {
		if err := v.MergeConfig(r); err != nil {
			return fmt.Errorf("failed to merge config %s: %w", path, err)
		}
		return nil
	}
	if err := v.ReadConfig(r); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	v.SetConfigFile(path)
	return nil
}

// expandEnv 未设置且无默认值的变量原样保留
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		m := envPlaceholder.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(m[1]); ok {
			return val
		}
		if m[2] != "" {
			return m[3]
		}
		return match
	})
}

var defaults = map[string]any{
	"app.name":    "podbook",
	"app.version": "v0.0.0",
	"app.env":     "development",

	"server.http.host":          "0.0.0.0",
	"server.http.port":          8080,
	"server.http.read_timeout":  "30s",
	"server.http.write_timeout": "60s",
	"server.http.idle_timeout":  "120s",

	"database.postgres.host":               "localhost",
	"database.postgres.port":               5432,
	"database.postgres.user":               "postgres",
	"database.postgres.database":           "podbook",
	"database.postgres.ssl_mode":           "disable",
	"database.postgres.max_open_conns":     50,
	"database.postgres.max_idle_conns":     10,
	"database.postgres.conn_max_lifetime":  "30m",
	"database.postgres.conn_max_idle_time": "5m",
	"database.postgres.log_level":          "warn",

	"cache.redis.host":           "localhost",
	"cache.redis.port":           6379,
	"cache.redis.db":             0,
	"cache.redis.pool_size":      100,
	"cache.redis.min_idle_conns": 10,
	"cache.redis.dial_timeout":   "5s",
	"cache.redis.read_timeout":   "3s",
	"cache.redis.write_timeout":  "3s",

	"messaging.redis_stream.max_len": 100000,

	"rss.fetch_timeout":       "15s",
	"rss.cache_ttl":           "10m",
	"rss.max_episodes":        500,
	"rss.max_body_bytes":      20 << 20,
	"rss.requests_per_second": 5,
	"rss.user_agent":          "podbook-rss/1.0",

	"clients.podbook.base_url":            "http://localhost:8080/api",
	"clients.podbook.timeout":             "30s",
	"clients.podium.timeout":              "30s",
	"clients.podium.identity_email":       "uploads@podbook.local",
	"clients.podium.language_code":        "en-US",
	"clients.podium.default_content_type": "podcast",
	"clients.storage.timeout":             "0s",
	"clients.ffprobe.binary":              "ffprobe",
	"clients.ffprobe.timeout":             "0s",

	"wizard.autosave_debounce":  "600ms",
	"wizard.saved_indicator":    "3s",
	"wizard.upload_concurrency": 1,
	"wizard.pricing_policy":     "flat",
	"wizard.project_route":      "/projects/%s",

	"observability.logging.level":       "info",
	"observability.logging.format":      "json",
	"observability.logging.output":      "stdout",
	"observability.tracing.enabled":     false,
	"observability.tracing.exporter":    "otlp",
	"observability.tracing.endpoint":    "localhost:4317",
	"observability.tracing.sample_rate": 1.0,
	"observability.metrics.enabled":     true,
	"observability.metrics.path":        "/metrics",

	"security.jwt.issuer":                     "podbook",
	"security.jwt.expiration":                 "15m",
	"security.jwt.refresh_expiration":         "168h",
	"security.rate_limit.enabled":             true,
	"security.rate_limit.requests_per_second": 100,
	"security.rate_limit.burst":               200,
}

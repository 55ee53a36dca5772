package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	// Path of the database file when Driver is sqlite.
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	// Migration names the schema strategy: auto, goose or golang_migrate.
	// Empty picks one from the environment and driver.
	Migration string `mapstructure:"migration"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

// LoginRateLimitConfig caps login attempts per client IP. Zero disables a window.
type LoginRateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
}

type AuthConfig struct {
	Password       PasswordConfig       `mapstructure:"password"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RouteRule binds an HTTP method and gin-style path pattern to the module
// (by tab URL) and capability it requires.
type RouteRule struct {
	Method     string `mapstructure:"method" yaml:"method"`
	Path       string `mapstructure:"path" yaml:"path"`
	Module     string `mapstructure:"module" yaml:"module"`
	Capability string `mapstructure:"capability" yaml:"capability"`
}

type AccessConfig struct {
	// BypassRole is the lowest role that skips per-module checks.
	BypassRole string `mapstructure:"bypass_role"`
	// CacheTTLSeconds bounds how long a user's permission rows stay in Redis.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	// PersistRoutes stores the route table in the casbin_rule table.
	PersistRoutes bool        `mapstructure:"persist_routes"`
	Routes        []RouteRule `mapstructure:"routes"`
}

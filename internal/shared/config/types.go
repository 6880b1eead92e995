package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is either "mysql" or "sqlite".
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
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

type SessionConfig struct {
	ExpHours    int    `mapstructure:"exp_hours"`
	FlashSecret string `mapstructure:"flash_secret"`

	// RetentionHours is how long expired or revoked sessions are kept.
	RetentionHours int    `mapstructure:"retention_hours"`
	PruneSchedule  string `mapstructure:"prune_schedule"`
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

type LoginRateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	RequestsPerHour   int `mapstructure:"requests_per_hour"`
}

type AuthConfig struct {
	Password       PasswordConfig       `mapstructure:"password"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Session        SessionConfig        `mapstructure:"session"`
	Cookie         CookieConfig         `mapstructure:"cookie"`
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// AccessConfig describes the routes the access gate treats specially.
type AccessConfig struct {
	AdminRoles         []string `mapstructure:"admin_roles"`
	LoginPath          string   `mapstructure:"login_path"`
	LogoutPath         string   `mapstructure:"logout_path"`
	PasswordChangePath string   `mapstructure:"password_change_path"`
	APIPrefix          string   `mapstructure:"api_prefix"`
}

type PermissionConfig struct {
	RolesFile string `mapstructure:"roles_file"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a redis host has been configured.
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

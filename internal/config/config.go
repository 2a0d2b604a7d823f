// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/timetable/internal/alias"
	"github.com/javiermolinar/timetable/internal/timetable"
	"github.com/javiermolinar/timetable/internal/tui/theme"
)

// SessionCookie is the portal's session cookie.
const SessionCookie = "edinyi_lk_session"

// ErrNoInstance is returned when a portal command runs without an instance.
var ErrNoInstance = errors.New("portal instance is not configured (set portal.instance or TIMETABLE_INSTANCE)")

// Config holds the application configuration.
type Config struct {
	Portal   PortalConfig   `toml:"portal"`
	Render   RenderConfig   `toml:"render"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
	Groups   []string       `toml:"groups,omitempty"`
	Teachers []TeacherEntry `toml:"teachers,omitempty" validate:"dive"`
	Aliases  []alias.Rule   `toml:"aliases,omitempty"`

	mu   sync.Mutex
	path string
}

// PortalConfig holds the portal address and session cookies.
type PortalConfig struct {
	Instance string            `toml:"instance" validate:"omitempty,url"`
	Cookies  map[string]string `toml:"cookies,omitempty"`
}

// RenderConfig holds HTML output settings.
type RenderConfig struct {
	CSSPath   string `toml:"css_path"`
	OutputDir string `toml:"output_dir" validate:"required"`
	Locale    string `toml:"locale" validate:"oneof=ru en"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" validate:"required"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr     string `toml:"addr" validate:"required"`
	CacheTTL string `toml:"cache_ttl"` // e.g. "5m"
	// MaxOffset bounds the week offsets of live requests.
	MaxOffset int `toml:"max_offset" validate:"gte=0,lte=260"`
}

// UIConfig holds terminal browser preferences.
type UIConfig struct {
	Theme string `toml:"theme"`
}

// TeacherEntry is a teacher fetched by default.
type TeacherEntry struct {
	ID  string `toml:"id" validate:"required"`
	FIO string `toml:"fio" validate:"required"`
}

// Teacher returns the parsed teacher.
func (e TeacherEntry) Teacher() timetable.Teacher {
	return timetable.ParseTeacher(e.ID, e.FIO)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Portal: PortalConfig{
			Cookies: map[string]string{},
		},
		Render: RenderConfig{
			CSSPath:   "../static/styles.css",
			OutputDir: ".",
			Locale:    "ru",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			CacheTTL:  "5m",
			MaxOffset: 52,
		},
		UI: UIConfig{
			Theme: theme.Default,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timetable.db"
	}
	return filepath.Join(home, ".local", "share", "timetable", "timetable.db")
}

// DefaultConfigPath returns the config file path, honoring TIMETABLE_CONFIG.
func DefaultConfigPath() string {
	if v := os.Getenv("TIMETABLE_CONFIG"); v != "" {
		return expandPath(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "timetable", "config.toml")
}

// Load reads a .env file from the working directory, if any, then loads
// configuration from the default path.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Render.OutputDir = expandPath(cfg.Render.OutputDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// readFile returns defaults overlaid with the file, if it exists.
func readFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Portal.Cookies == nil {
		cfg.Portal.Cookies = map[string]string{}
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIMETABLE_INSTANCE"); v != "" {
		cfg.Portal.Instance = v
	}
	if v := os.Getenv("TIMETABLE_SESSION"); v != "" {
		cfg.Portal.Cookies[SessionCookie] = v
	}
	if v := os.Getenv("TIMETABLE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TIMETABLE_OUTPUT_DIR"); v != "" {
		cfg.Render.OutputDir = v
	}
	if v := os.Getenv("TIMETABLE_CSS_PATH"); v != "" {
		cfg.Render.CSSPath = v
	}
	if v := os.Getenv("TIMETABLE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("TIMETABLE_LOCALE"); v != "" {
		cfg.Render.Locale = strings.ToLower(v)
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var validate = validator.New()

// Validate checks if the configuration is valid. Alias rules are checked
// when the resolver is built, which skips the invalid ones.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Server.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Server.CacheTTL); err != nil {
			return fmt.Errorf("server.cache_ttl: %w", err)
		}
	}
	if c.UI.Theme != "" && !theme.IsAvailable(c.UI.Theme) {
		return fmt.Errorf("ui.theme: unknown theme %q (available: %s)", c.UI.Theme, strings.Join(theme.Available(), ", "))
	}
	return nil
}

// RequirePortal reports ErrNoInstance when no portal instance is set.
func (c *Config) RequirePortal() error {
	if c.Portal.Instance == "" {
		return ErrNoInstance
	}
	return nil
}

// CacheTTL returns the server cache lifetime. Zero disables expiry.
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.CacheTTL)
	return d
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Cookies returns a copy of the portal cookies.
func (c *Config) Cookies() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.Portal.Cookies)
}

// SetCookie stores a cookie the portal rotated. When the configuration came
// from a file, the cookie is written back to it, leaving the rest of the file
// and any environment overrides untouched.
func (c *Config) SetCookie(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Portal.Cookies == nil {
		c.Portal.Cookies = map[string]string{}
	}
	c.Portal.Cookies[name] = value

	if c.path == "" {
		return nil
	}
	onDisk, err := readFile(c.path)
	if err != nil {
		return err
	}
	onDisk.Portal.Cookies[name] = value
	return onDisk.SaveTo(c.path)
}

// Save writes the configuration to the path it was loaded from, or the
// default path.
func (c *Config) Save() error {
	if c.path != "" {
		return c.SaveTo(c.path)
	}
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Cookies are credentials.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

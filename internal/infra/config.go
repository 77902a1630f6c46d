package infra

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/domain"
)

// Config — корневая структура конфигурации консоли.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера веб-консоли.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig описывает подключение к бэкенду CyberSentinel.
type BackendConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SessionCookieName string        `mapstructure:"session_cookie_name"`
	SessionCookie     string        `mapstructure:"session_cookie"`

	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	// Настройки Circuit Breaker для фоновых чтений
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBFailures    uint32        `mapstructure:"cb_failures"`
}

// DashboardConfig заменяет встроенный в страницу bootstrap-объект.
type DashboardConfig struct {
	DetectEndpoint        string `mapstructure:"detect_endpoint"`
	NotificationsEndpoint string `mapstructure:"notifications_endpoint"`
	AlertsEndpoint        string `mapstructure:"alerts_endpoint"`
	ActivityStatsEndpoint string `mapstructure:"activity_stats_endpoint"`

	ActivityStats []domain.ActivityStatRow `mapstructure:"activity_stats"`
	StatsAttempts uint                     `mapstructure:"stats_attempts"`

	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	TrainResetAfter time.Duration `mapstructure:"train_reset_after"`

	ReportDir string `mapstructure:"report_dir"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stderr, stdout или путь к файлу
}

// Loader держит viper и последнюю прочитанную конфигурацию.
type Loader struct {
	v *viper.Viper

	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader читает конфигурацию. При пустом path ищем config.yaml в . и ./configs.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 2. ENV перекрывает файл: BACKEND_BASE_URL перекроет backend.base_url
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Файла нет, работаем на ENV и дефолтах
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// LoadConfig читает конфигурацию один раз, без отслеживания изменений.
func LoadConfig(path string) (*Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return l.Config(), nil
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg, decodeHooks()); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// Config возвращает текущую конфигурацию.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange регистрирует callback на перечитывание файла.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch включает hot-reload через fsnotify. Битый файл логируется, старая конфигурация остается.
func (l *Loader) Watch(logger *zap.Logger) {
	if l.v.ConfigFileUsed() == "" {
		logger.Info("no config file in use, hot-reload disabled")
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			logger.Warn("config reload skipped", zap.String("file", e.Name), zap.Error(err))
			return
		}

		l.mu.Lock()
		l.current = cfg
		callbacks := make([]func(*Config), len(l.onChange))
		copy(callbacks, l.onChange)
		l.mu.Unlock()

		logger.Info("config reloaded", zap.String("file", e.Name))
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("backend.base_url", "http://127.0.0.1:5000")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.session_cookie_name", "cybersentinel_session")
	v.SetDefault("backend.session_cookie", "")
	v.SetDefault("backend.rate_limit", 20)
	v.SetDefault("backend.rate_burst", 5)
	v.SetDefault("backend.cb_max_requests", 1)
	v.SetDefault("backend.cb_interval", 0)
	v.SetDefault("backend.cb_timeout", 2*time.Minute)
	v.SetDefault("backend.cb_failures", 5)

	v.SetDefault("dashboard.detect_endpoint", "/ai/detect")
	v.SetDefault("dashboard.notifications_endpoint", "/ai/activity-feed")
	v.SetDefault("dashboard.alerts_endpoint", "/admin/api/alerts")
	v.SetDefault("dashboard.activity_stats_endpoint", "")
	v.SetDefault("dashboard.stats_attempts", 3)
	v.SetDefault("dashboard.refresh_interval", 60*time.Second)
	v.SetDefault("dashboard.train_reset_after", 4*time.Second)
	v.SetDefault("dashboard.report_dir", ".")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stderr")
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Calc     CalcConfig
	Ledger   LedgerConfig
	Report   ReportConfig
	Tracing  TracingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis backs the index-factor
// cache; when unreachable the service degrades to an in-process cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// CalcConfig parameterises the statement engine: the fine regime split, the
// simple-interest rate, and the per-index mean monthly rates used when an
// index series has no observation over the requested interval. Rates are in
// percent.
type CalcConfig struct {
	FineCutoff          string // YYYY-MM-DD; due dates on or before pay the higher fine
	FineRateBefore      float64
	FineRateAfter       float64
	MonthlyInterestRate float64
	HonorariosDefault   float64 // percent applied when a run names no rate
	FallbackRateTR      float64
	FallbackRateINPC    float64
	FallbackRateIGPM    float64
	FallbackRateIPCA    float64
}

// LedgerConfig carries the fixed attributes stamped on prejudice appends to
// the receivables ledger.
type LedgerConfig struct {
	Creditor     string
	CarteiraID   int
	OcorrenciaID int
	StatusID     int
}

// ReportConfig holds the letterhead of the PDF proposal and the renderer
// timeout.
type ReportConfig struct {
	Department  string
	Division    string
	City        string
	PDFTimeout  time.Duration
	ChromePath  string
	PDFDisabled bool // render HTML only, for environments without Chrome
}

// TracingConfig holds OpenTelemetry settings. Disabled by default; when
// enabled, spans go to an OTLP collector over gRPC.
type TracingConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
	SlowQueryThresh   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SISCALCULO_ prefix (e.g., SISCALCULO_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SISCALCULO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Enabled:  v.GetBool("redis.enabled"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Calc: CalcConfig{
			FineCutoff:          v.GetString("calc.fine_cutoff"),
			FineRateBefore:      v.GetFloat64("calc.fine_rate_before"),
			FineRateAfter:       v.GetFloat64("calc.fine_rate_after"),
			MonthlyInterestRate: v.GetFloat64("calc.monthly_interest_rate"),
			HonorariosDefault:   v.GetFloat64("calc.honorarios_default"),
			FallbackRateTR:      v.GetFloat64("calc.fallback_rate_tr"),
			FallbackRateINPC:    v.GetFloat64("calc.fallback_rate_inpc"),
			FallbackRateIGPM:    v.GetFloat64("calc.fallback_rate_igpm"),
			FallbackRateIPCA:    v.GetFloat64("calc.fallback_rate_ipca"),
		},
		Ledger: LedgerConfig{
			Creditor:     v.GetString("ledger.creditor"),
			CarteiraID:   v.GetInt("ledger.carteira_id"),
			OcorrenciaID: v.GetInt("ledger.ocorrencia_id"),
			StatusID:     v.GetInt("ledger.status_id"),
		},
		Report: ReportConfig{
			Department:  v.GetString("report.department"),
			Division:    v.GetString("report.division"),
			City:        v.GetString("report.city"),
			PDFTimeout:  v.GetDuration("report.pdf_timeout"),
			ChromePath:  v.GetString("report.chrome_path"),
			PDFDisabled: v.GetBool("report.pdf_disabled"),
		},
		Tracing: TracingConfig{
			Enabled:           v.GetBool("tracing.enabled"),
			CollectorEndpoint: v.GetString("tracing.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("tracing.sampling_ratio"),
			Insecure:          v.GetBool("tracing.insecure"),
			SlowQueryThresh:   v.GetDuration("tracing.slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "siscalculo"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "siscalculo"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB, worksheet uploads included
	}
	if cfg.Calc.FineCutoff == "" {
		cfg.Calc.FineCutoff = "2003-01-10"
	}
	if cfg.Calc.FineRateBefore == 0 {
		cfg.Calc.FineRateBefore = 10
	}
	if cfg.Calc.FineRateAfter == 0 {
		cfg.Calc.FineRateAfter = 2
	}
	if cfg.Calc.MonthlyInterestRate == 0 {
		cfg.Calc.MonthlyInterestRate = 1
	}
	if cfg.Calc.HonorariosDefault == 0 {
		cfg.Calc.HonorariosDefault = 10
	}
	if cfg.Calc.FallbackRateTR == 0 {
		cfg.Calc.FallbackRateTR = 0.09
	}
	if cfg.Calc.FallbackRateINPC == 0 {
		cfg.Calc.FallbackRateINPC = 0.45
	}
	if cfg.Calc.FallbackRateIGPM == 0 {
		cfg.Calc.FallbackRateIGPM = 0.55
	}
	if cfg.Calc.FallbackRateIPCA == 0 {
		cfg.Calc.FallbackRateIPCA = 0.47
	}
	if cfg.Ledger.Creditor == "" {
		cfg.Ledger.Creditor = "CAIXA"
	}
	if cfg.Ledger.CarteiraID == 0 {
		cfg.Ledger.CarteiraID = 4
	}
	if cfg.Ledger.OcorrenciaID == 0 {
		cfg.Ledger.OcorrenciaID = 1
	}
	if cfg.Ledger.StatusID == 0 {
		cfg.Ledger.StatusID = 3
	}
	if cfg.Report.Department == "" {
		cfg.Report.Department = "GERÊNCIA DE ADMINISTRAÇÃO DE CONDOMÍNIOS"
	}
	if cfg.Report.Division == "" {
		cfg.Report.Division = "SETOR DE CÁLCULO E COBRANÇA"
	}
	if cfg.Report.City == "" {
		cfg.Report.City = "Brasília"
	}
	if cfg.Report.PDFTimeout == 0 {
		cfg.Report.PDFTimeout = 30 * time.Second
	}
	if cfg.Tracing.CollectorEndpoint == "" {
		cfg.Tracing.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Tracing.SamplingRatio == 0 {
		cfg.Tracing.SamplingRatio = 1.0
	}
	if cfg.Tracing.SlowQueryThresh == 0 {
		cfg.Tracing.SlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if _, err := time.Parse("2006-01-02", c.Calc.FineCutoff); err != nil {
		return fmt.Errorf("calc.fine_cutoff must be YYYY-MM-DD: %w", err)
	}
	if c.Calc.FineRateBefore < 0 || c.Calc.FineRateAfter < 0 || c.Calc.MonthlyInterestRate < 0 || c.Calc.HonorariosDefault < 0 {
		return fmt.Errorf("calc rates cannot be negative")
	}
	if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
		return fmt.Errorf("tracing.sampling_ratio must be within [0, 1]")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// FineCutoffDate returns the parsed fine cutoff. Load guarantees the format.
func (c *CalcConfig) FineCutoffDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.FineCutoff)
	return t
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

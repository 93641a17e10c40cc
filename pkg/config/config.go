package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VITRINE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VITRINE_DB_DSN"
	EnvDBHost = "VITRINE_DB_HOST"
	EnvDBUser = "VITRINE_DB_USER"
	EnvDBName = "VITRINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Trial        TrialConfig
	Catalog      CatalogConfig
	Session      SessionConfig
	SavedCart    SavedCartConfig
	OrderHub     OrderHubConfig
	GCP          GCPConfig
	GCS          GCSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VITRINE_APP_ENV" required:"true"`
	Port         string `envconfig:"VITRINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VITRINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VITRINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VITRINE_DB_DSN"`
	Driver string `envconfig:"VITRINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VITRINE_DB_HOST"`
	LegacyPort     int    `envconfig:"VITRINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VITRINE_DB_USER"`
	LegacyPassword string `envconfig:"VITRINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"VITRINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"VITRINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VITRINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VITRINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VITRINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VITRINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VITRINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VITRINE_REDIS_ADDR"`
	Password     string        `envconfig:"VITRINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"VITRINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VITRINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VITRINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VITRINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VITRINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VITRINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VITRINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VITRINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VITRINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VITRINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VITRINE_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VITRINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VITRINE_AUTO_MIGRATE" default:"false"`
}

// TrialConfig carries the global overrides applied to trial stores when their
// plan matrix has no explicit entry for a feature.
type TrialConfig struct {
	AllowViewPrices    bool `envconfig:"VITRINE_TRIAL_ALLOW_VIEW_PRICES" default:"true"`
	AllowFinalizeOrder bool `envconfig:"VITRINE_TRIAL_ALLOW_FINALIZE_ORDER" default:"true"`
	AllowSaveCart      bool `envconfig:"VITRINE_TRIAL_ALLOW_SAVE_CART" default:"false"`
}

type CatalogConfig struct {
	PageSize int `envconfig:"VITRINE_CATALOG_PAGE_SIZE" default:"12"`
}

// SessionConfig drives the shopper-session lifetimes. An empty TokenSecret
// leaves the session cookie as a raw identifier; setting it makes the cookie
// a signed token so a visitor cannot forge another shopper's session.
type SessionConfig struct {
	CartTTL         time.Duration `envconfig:"VITRINE_SESSION_CART_TTL" default:"720h"`
	GateTTL         time.Duration `envconfig:"VITRINE_SESSION_GATE_TTL" default:"24h"`
	OrderSuccessTTL time.Duration `envconfig:"VITRINE_SESSION_ORDER_SUCCESS_TTL" default:"1h"`
	InFlightTTL     time.Duration `envconfig:"VITRINE_SESSION_INFLIGHT_TTL" default:"30s"`
	CustomerTTL     time.Duration `envconfig:"VITRINE_SESSION_CUSTOMER_TTL" default:"4320h"`
	TokenSecret     string        `envconfig:"VITRINE_SESSION_TOKEN_SECRET"`
	TokenIssuer     string        `envconfig:"VITRINE_SESSION_TOKEN_ISSUER" default:"vitrine"`
	TokenTTL        time.Duration `envconfig:"VITRINE_SESSION_TOKEN_TTL" default:"4320h"`
}

type SavedCartConfig struct {
	CodeLength int           `envconfig:"VITRINE_SAVED_CART_CODE_LENGTH" default:"6"`
	TTL        time.Duration `envconfig:"VITRINE_SAVED_CART_TTL" default:"0"`
}

type OrderHubConfig struct {
	BaseURL string        `envconfig:"VITRINE_ORDERHUB_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"VITRINE_ORDERHUB_API_KEY"`
	Timeout time.Duration `envconfig:"VITRINE_ORDERHUB_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VITRINE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VITRINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VITRINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"VITRINE_GCS_BUCKET_NAME"`
	ReceiptPrefix string `envconfig:"VITRINE_GCS_RECEIPT_PREFIX" default:"receipts"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

// AllowByTrial resolves the trial override for a feature key.
func (t TrialConfig) AllowByTrial(feature string) bool {
	switch feature {
	case "view_prices":
		return t.AllowViewPrices
	case "finalize_order":
		return t.AllowFinalizeOrder
	case "save_cart":
		return t.AllowSaveCart
	}
	return false
}

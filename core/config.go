package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Client   ClientConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		DisableRequestLogs bool
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite | memory
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only; ":memory:" for an ephemeral DB
	}

	ClientConfig struct {
		BaseURL                   string
		Token                     string
		Timeout                   time.Duration
		RefetchOnFocus            bool
		RefetchOnReconnect        bool
		RefetchOnMountOrArgChange bool
	}
)

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugAddress", ":4000")
	v.SetDefault("serverDisableRequestLogs", false)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "masomo")
	v.SetDefault("dbUser", "masomo")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("dbPath", "masomo.db")

	v.SetDefault("clientBaseURL", "http://localhost:8000/v1")
	v.SetDefault("clientToken", "")
	v.SetDefault("clientTimeout", 10*time.Second)
	v.SetDefault("clientRefetchOnFocus", true)
	v.SetDefault("clientRefetchOnReconnect", true)
	v.SetDefault("clientRefetchOnMountOrArgChange", false)
}

// NewConfig loads the configuration of the current ENV.
// Values come from (in order of precedence): `<ENV>_*` environment variables, `config/.env.<env>`, defaults.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	v := viper.New()
	setDefaults(v)
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if root, err := ProjectRoot(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Address:            v.GetString("serverAddress"),
			DebugAddress:       v.GetString("serverDebugAddress"),
			DisableRequestLogs: v.GetBool("serverDisableRequestLogs"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
			Path:          v.GetString("dbPath"),
		},
		Client: ClientConfig{
			BaseURL:                   v.GetString("clientBaseURL"),
			Token:                     v.GetString("clientToken"),
			Timeout:                   v.GetDuration("clientTimeout"),
			RefetchOnFocus:            v.GetBool("clientRefetchOnFocus"),
			RefetchOnReconnect:        v.GetBool("clientRefetchOnReconnect"),
			RefetchOnMountOrArgChange: v.GetBool("clientRefetchOnMountOrArgChange"),
		},
	}, nil
}

// NewTestConfig returns a Config suitable for tests: sqlite in memory, no request logs.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		AppName:   v.GetString("appName"),
		Env:       "TEST",
		Build:     "test",
		Debug:     false,
		TestMode:  true,
		SecretKey: "test-secret",
		Server: ServerConfig{
			Host:               "localhost",
			DisableRequestLogs: true,
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Database: DatabaseConfig{
			Engine: "sqlite",
			Path:   ":memory:",
		},
		Client: ClientConfig{
			Timeout: 5 * time.Second,
		},
	}
}

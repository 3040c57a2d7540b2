package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		WorkDir          string
		Timezone         *time.Location
		RollbarToken     string
		SendgridAPIKey   string
		DefaultFromEmail mail.Address
		DigestRecipients []mail.Address

		Server   ServerConfig
		Database DatabaseConfig
		Engine   EngineConfig
		Account  AccountConfig
		Report   ReportConfig
	}

	ServerConfig struct {
		Host            string
		Port            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// EngineConfig holds the thresholds of the recommendation engine and the dashboard aggregator.
	EngineConfig struct {
		StruggleThreshold int
		GoodThreshold     int
		RecommendCount    int
		RollingWindow     int
		RiskThreshold     int
	}

	AccountConfig struct {
		MinPhoneDigits int
	}

	ReportConfig struct {
		ParentLogLimit int
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) InMemory() bool {
	return c.Engine == "memory"
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "MathSol Academy")
	v.SetDefault("build", "develop")
	v.SetDefault("timezone", "Asia/Seoul")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("digestRecipients", []string{})

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "academy")
	v.SetDefault("database.user", "academy")
	v.SetDefault("database.password", "academy")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("engine.struggleThreshold", 60)
	v.SetDefault("engine.goodThreshold", 80)
	v.SetDefault("engine.recommendCount", 3)
	v.SetDefault("engine.rollingWindow", 5)
	v.SetDefault("engine.riskThreshold", 60)

	v.SetDefault("account.minPhoneDigits", 8)
	v.SetDefault("report.parentLogLimit", 30)
}

// NewConfig loads the app configuration from defaults, config/.env.<env> (if any) and the environment.
// Environment variables are prefixed with the upper-cased env and use underscores, e.g. DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf, err := configFromViper(v, env, wd)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

func configFromViper(v *viper.Viper, env, wd string) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", v.GetString("timezone"), err)
	}
	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		from = &mail.Address{Address: v.GetString("defaultFromEmail")}
	}
	recipients := make([]mail.Address, 0)
	for _, addr := range v.GetStringSlice("digestRecipients") {
		if parsed, err := mail.ParseAddress(addr); err == nil {
			recipients = append(recipients, *parsed)
		}
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		WorkDir:          wd,
		Timezone:         loc,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: *from,
		DigestRecipients: recipients,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetString("server.port"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Engine: EngineConfig{
			StruggleThreshold: v.GetInt("engine.struggleThreshold"),
			GoodThreshold:     v.GetInt("engine.goodThreshold"),
			RecommendCount:    v.GetInt("engine.recommendCount"),
			RollingWindow:     v.GetInt("engine.rollingWindow"),
			RiskThreshold:     v.GetInt("engine.riskThreshold"),
		},
		Account: AccountConfig{
			MinPhoneDigits: v.GetInt("account.minPhoneDigits"),
		},
		Report: ReportConfig{
			ParentLogLimit: v.GetInt("report.parentLogLimit"),
		},
	}, nil
}

// NewTestConfig returns the default configuration without touching the environment.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("testMode", true)
	v.Set("database.engine", "memory")
	conf, err := configFromViper(v, "TEST", "")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

package providers

import (
	"cvewatch/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "CveWatch"

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "https://services.nvd.nist.gov/rest/json/cves/2.0")
	v.SetDefault("api.schema", "2.0")
	v.SetDefault("api.resultsPerPage", 100)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retries", 5)
	v.SetDefault("api.retryDelay", time.Second)
	v.SetDefault("api.retryBackoff", 2.0)
	v.SetDefault("api.concurrency", 4)
	v.SetDefault("api.recordCacheSize", 4096)

	v.SetDefault("jobs.pattern", "*.yaml")
	v.SetDefault("schedule.interval", 30*time.Minute)
	v.SetDefault("schedule.runOnStart", true)

	v.SetDefault("mail.verify", true)
	v.SetDefault("mail.timeout", 30*time.Second)
	v.SetDefault("mail.retries", 5)
	v.SetDefault("mail.retryDelay", time.Second)
	v.SetDefault("mail.concurrency", 4)
	v.SetDefault("mail.colors.heading", "#1f3a5f")
	v.SetDefault("mail.colors.header", "#d9e2ef")
	v.SetDefault("mail.colors.table", "#f5f7fa")

	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.size", 8)
	v.SetDefault("cache.ttl", 30*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "CVEWATCH_LOG_LEVEL")
	v.BindEnv("api.key", "CVEWATCH_API_KEY")
	v.BindEnv("mail.password", "CVEWATCH_SMTP_PASSWORD")
	v.BindEnv("jobs.dir", "CVEWATCH_JOBS_DIR")
	v.BindEnv("schedule.interval", "CVEWATCH_SCHEDULE_INTERVAL")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ApiConfig struct {
	Url             string        `yaml:"url" validate:"required|fullUrl"`
	Schema          string        `yaml:"schema" validate:"in:1.0,2.0"`
	Key             string        `yaml:"key"`
	ResultsPerPage  int           `yaml:"resultsPerPage" validate:"required|int|min:1|max:2000"`
	Timeout         time.Duration `yaml:"timeout" validate:"required|min:1"`
	Retries         int           `yaml:"retries" validate:"required|int|min:1"`
	RetryDelay      time.Duration `yaml:"retryDelay" validate:"required|min:1"`
	RetryBackoff    float64       `yaml:"retryBackoff"`
	Concurrency     int           `yaml:"concurrency" validate:"required|int|min:1"`
	RecordCacheSize int           `yaml:"recordCacheSize"`
}

type JobsConfig struct {
	Dir     string `yaml:"dir" validate:"required|unixPath"`
	Pattern string `yaml:"pattern"`
}

type WatermarkConfig struct {
	FilePath string `yaml:"filePath" validate:"required|unixPath"`
	Compress bool   `yaml:"compress"`
}

type ScheduleConfig struct {
	Interval   time.Duration `yaml:"interval" validate:"required|min:1"`
	RunOnStart bool          `yaml:"runOnStart"`
}

type MailColors struct {
	Heading string `yaml:"heading"`
	Header  string `yaml:"header"`
	Table   string `yaml:"table"`
}

type MailConfig struct {
	Sender      string        `yaml:"sender" validate:"required|email"`
	Host        string        `yaml:"host" validate:"required"`
	Port        int           `yaml:"port" validate:"uint"`
	Tls         bool          `yaml:"tls"`
	StartTls    bool          `yaml:"startTls"`
	Verify      bool          `yaml:"verify"`
	Auth        bool          `yaml:"auth"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Timeout     time.Duration `yaml:"timeout" validate:"required|min:1"`
	Retries     int           `yaml:"retries" validate:"required|int|min:1"`
	RetryDelay  time.Duration `yaml:"retryDelay" validate:"required|min:1"`
	Concurrency int           `yaml:"concurrency" validate:"required|int|min:1"`
	Colors      MailColors    `yaml:"colors"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Api       ApiConfig       `yaml:"api"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Mail      MailConfig      `yaml:"mail"`
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

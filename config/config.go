package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SystemConfig struct {
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Type   string `yaml:"type"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
	Passwd string `yaml:"passwd"`
	Debug  bool   `yaml:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type PagespeedConfig struct {
	Endpoint string `yaml:"endpoint"`
	ApiKey   string `yaml:"api_key"`
	Timeout  int    `yaml:"timeout"` // seconds
}

type AppConfig struct {
	System    SystemConfig    `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LoggerConfig    `yaml:"logger"`
	Pagespeed PagespeedConfig `yaml:"pagespeed"`
}

// DefaultConfig returns the baseline configuration before file and
// environment overrides.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Location: "UTC",
			Workdir:  "/var/vitalscope",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 1880,
		},
		Database: DBConfig{
			Type:   "postgres",
			Host:   "127.0.0.1",
			Port:   5432,
			Name:   "vitalscope",
			User:   "postgres",
			Passwd: "",
		},
		Logger: LoggerConfig{
			Mode:     "development",
			Filename: "/var/vitalscope/vitalscope.log",
		},
		Pagespeed: PagespeedConfig{
			Timeout: 60,
		},
	}
}

// LoadConfig reads a yaml configuration file over the defaults. A missing
// path returns the defaults unchanged. Environment variables override the
// secrets that should not live in files.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("VITALSCOPE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("VITALSCOPE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("VITALSCOPE_DB_PASSWD"); v != "" {
		cfg.Database.Passwd = v
	}
	if v := os.Getenv("PAGESPEED_API_KEY"); v != "" {
		cfg.Pagespeed.ApiKey = v
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RequestTimeout string   `yaml:"request_timeout"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Local struct {
		// Driver is sqlite, redis or memory.
		Driver           string `yaml:"driver"`
		Path             string `yaml:"path"`
		SubmissionBucket string `yaml:"submission_bucket"`
		SnapshotBucket   string `yaml:"snapshot_bucket"`
	} `yaml:"local"`
	Connectivity struct {
		ProbeInterval string `yaml:"probe_interval"`
		StartOffline  bool   `yaml:"start_offline"`
	} `yaml:"connectivity"`
	Submission struct {
		QueueOnRemoteFailure *bool `yaml:"queue_on_remote_failure"`
	} `yaml:"submission"`
	Notify struct {
		// Driver is smtp, amqp or log.
		Driver        string `yaml:"driver"`
		OperatorEmail string `yaml:"operator_email"`
		SMTP          struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			From     string `yaml:"from"`
			ReplyTo  string `yaml:"reply_to"`
		} `yaml:"smtp"`
		AMQP struct {
			URL   string `yaml:"url"`
			Queue string `yaml:"queue"`
		} `yaml:"amqp"`
	} `yaml:"notify"`
	Admin struct {
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
		SessionTTL   string `yaml:"session_ttl"`
	} `yaml:"admin"`
}

// Load reads YAML config from path and fills in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Local.Driver == "" {
		c.Local.Driver = "sqlite"
	}
	if c.Local.Path == "" {
		c.Local.Path = "data/offline.db"
	}
	if c.Notify.Driver == "" {
		c.Notify.Driver = "log"
	}
	if c.Notify.SMTP.Port == 0 {
		c.Notify.SMTP.Port = 587
	}
	if c.Admin.Username == "" {
		c.Admin.Username = "admin"
	}
}

func (c *Config) validate() error {
	switch c.Local.Driver {
	case "sqlite", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("local driver redis needs redis.addr")
		}
	default:
		return fmt.Errorf("unknown local driver %q", c.Local.Driver)
	}
	switch c.Notify.Driver {
	case "log":
	case "smtp":
		if c.Notify.SMTP.Host == "" || c.Notify.OperatorEmail == "" {
			return fmt.Errorf("notify driver smtp needs notify.smtp.host and notify.operator_email")
		}
	case "amqp":
		if c.Notify.AMQP.URL == "" {
			return fmt.Errorf("notify driver amqp needs notify.amqp.url")
		}
	default:
		return fmt.Errorf("unknown notify driver %q", c.Notify.Driver)
	}
	return nil
}

// QueueOnRemoteFailure defaults to true when unset.
func (c Config) QueueOnRemoteFailure() bool {
	if c.Submission.QueueOnRemoteFailure == nil {
		return true
	}
	return *c.Submission.QueueOnRemoteFailure
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

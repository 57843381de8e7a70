package conf

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

const (
	defaultPort            = 9000
	defaultShutdownTimeout = 5 * time.Second
	defaultWindow          = 1000 * time.Millisecond
	defaultTickPeriod      = 250 * time.Millisecond
	defaultRedisChannel    = "request-rate:stats"
	defaultPublishTimeout  = 1 * time.Second
)

type Local struct {
	Http    Http
	Stats   Stats
	Logging Logging
	Redis   *Redis
}

type Http struct {
	Host                 string
	Port                 int `validate:"omitempty,min=0,max=65535"`
	ShutdownTimeoutInSec int `validate:"omitempty,min=0"`
}

type Stats struct {
	WindowInMs     int `validate:"omitempty,min=1"`
	TickPeriodInMs int `validate:"omitempty,min=1"`
}

type Logging struct {
	LogLevel         log.Level
	RequestLogEnable bool
}

type Redis struct {
	Address            string
	Username           string
	Password           string
	Channel            string
	PublishTimeoutInMs int `validate:"omitempty,min=1"`
}

func (cfg Local) Validate() error {
	if cfg.Redis != nil && cfg.Redis.Address == "" {
		return errors.New("invalid redis config. address is required")
	}
	if cfg.Stats.TickPeriodInMs > 0 && cfg.Stats.WindowInMs > 0 && cfg.Stats.TickPeriodInMs > cfg.Stats.WindowInMs {
		return errors.Errorf("tick period %dms must not exceed window %dms", cfg.Stats.TickPeriodInMs, cfg.Stats.WindowInMs)
	}
	return nil
}

func (cfg Http) GetAddress() string {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", cfg.Host, port)
}

func (cfg Http) GetShutdownTimeout() time.Duration {
	if cfg.ShutdownTimeoutInSec <= 0 {
		return defaultShutdownTimeout
	}
	return time.Duration(cfg.ShutdownTimeoutInSec) * time.Second
}

func (cfg Stats) GetWindow() time.Duration {
	if cfg.WindowInMs <= 0 {
		return defaultWindow
	}
	return time.Duration(cfg.WindowInMs) * time.Millisecond
}

func (cfg Stats) GetTickPeriod() time.Duration {
	if cfg.TickPeriodInMs <= 0 {
		return defaultTickPeriod
	}
	return time.Duration(cfg.TickPeriodInMs) * time.Millisecond
}

func (cfg Redis) GetChannel() string {
	if cfg.Channel == "" {
		return defaultRedisChannel
	}
	return cfg.Channel
}

func (cfg Redis) GetPublishTimeout() time.Duration {
	if cfg.PublishTimeoutInMs <= 0 {
		return defaultPublishTimeout
	}
	return time.Duration(cfg.PublishTimeoutInMs) * time.Millisecond
}

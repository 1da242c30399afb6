package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis     `yaml:"redis"`
	Rooms      Rooms     `yaml:"rooms"`
	Results    Results   `yaml:"results"`
	WebSocket  WebSocket `yaml:"websocket"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Rooms controls idle room reaping; a zero IdleTimeout disables it.
type Rooms struct {
	IdleTimeout  time.Duration `yaml:"idle-timeout" env:"ROOM_IDLE_TIMEOUT" env-default:"0s"`
	ReapInterval time.Duration `yaml:"reap-interval" env:"ROOM_REAP_INTERVAL" env-default:"1m"`
}

type Results struct {
	TTL   time.Duration `yaml:"ttl" env:"RESULTS_TTL" env-default:"24h"`
	Limit int           `yaml:"limit" env:"RESULTS_LIMIT" env-default:"20"`
}

type WebSocket struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
}

// Load - loads the configuration from the yml file, the environment overrides it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return net.JoinHostPort(that.Host, that.Port)
}

func (that *Rooms) ReapingEnabled() bool {
	return that.IdleTimeout > 0 && that.ReapInterval > 0
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	TCPPort    string `yaml:"tcp-port" env:"TCP_PORT" env-default:"1024"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis" env-prefix:"REDIS_"`
	Match      Match  `yaml:"match" env-prefix:"MATCH_"`
}

type Redis struct {
	Host     string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PORT" env-default:"6379"`
	Password string `yaml:"password" env:"PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"DB" env-default:"0"`
}

// Match holds the per match limits. Zero timeouts wait forever.
type Match struct {
	ReadyTimeout  time.Duration `yaml:"ready-timeout" env:"READY_TIMEOUT" env-default:"0s"`
	TurnTimeout   time.Duration `yaml:"turn-timeout" env:"TURN_TIMEOUT" env-default:"0s"`
	WriteTimeout  time.Duration `yaml:"write-timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
	MaxLineLength int           `yaml:"max-line-length" env:"MAX_LINE_LENGTH" env-default:"256"`
	SnapshotTTL   time.Duration `yaml:"snapshot-ttl" env:"SNAPSHOT_TTL" env-default:"2h"`
}

// MustLoad - load all configurations in config.yml file, environment variables take precedence.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

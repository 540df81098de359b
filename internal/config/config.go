package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	SocketPath string `yaml:"socket-path" env:"SOCKET_PATH" env-default:"/tttService"`
	RoomID     string `yaml:"room-id" env:"ROOM_ID" env-default:"main"`
	SendBuffer int    `yaml:"send-buffer" env:"SEND_BUFFER" env-default:"16"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Enabled       bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host          string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env:"REDIS_CHANNEL_PREFIX" env-default:"ttt:"`
}

// Load reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

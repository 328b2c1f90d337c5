package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type APIConfig interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
}

func New() Config {
	return mainConfig{}
}

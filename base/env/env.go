package env

import (
	"os"
)

const defaultConfigPath = "infra/configs/config.yaml"

// PodName example: marketd-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// EnvName example: staging
func EnvName() string {
	return os.Getenv("ENV_NAME")
}

// AppName example: marketd
func AppName() string {
	return os.Getenv("APP_NAME")
}

// ConfigPath returns CONFIG_PATH or the in-repo default.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

package config

// Config aggregates the client's configuration concerns.
type Config interface {
	EnvConfig
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}

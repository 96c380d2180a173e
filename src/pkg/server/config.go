package server

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/config"
)

type Config struct {
	Address         string `json:"address,omitempty"`
	Port            int    `json:"port,omitempty"`
	BodyLimit       string `json:"body_limit,omitempty"`
	ShutdownTimeout int    `json:"shutdown_timeout,omitempty"` // seconds
}

func DefaultValueConfig() Config {
	return Config{
		Address:         "127.0.0.1",
		Port:            8401,
		BodyLimit:       "32M",
		ShutdownTimeout: 30,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "server", "not provided", "default server config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "server", "provided", "local server config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

// ListenAddress is "address:port".
func (cfg Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
}

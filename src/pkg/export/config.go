package export

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/config"
)

type Config struct {
	OutputDirectory string `json:"output_directory,omitempty"`
	DatasetPath     string `json:"dataset_path,omitempty"`
	LookupPath      string `json:"lookup_path,omitempty"`
	WriteSummary    bool   `json:"write_summary,omitempty"`
	SendEmails      bool   `json:"send_emails,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		OutputDirectory: "./out/exports",
		DatasetPath:     "./data/dataset.json",
		WriteSummary:    true,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "export", "not provided", "default export config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "export", "provided", "local export config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

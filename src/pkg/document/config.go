package document

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"permit-report/src/pkg/config"
)

type Config struct {
	RasterWidth int     `json:"raster_width,omitempty"` // pixels, every page image is resized to this
	DPI         int     `json:"dpi,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`  // points
	RowHeight   float64 `json:"row_height,omitempty"` // points
	MarginMM    float64 `json:"margin_mm,omitempty"`
	LogoPath    string  `json:"logo_path,omitempty"`
	LogoWidth   int     `json:"logo_width,omitempty"`
	LogoHeight  int     `json:"logo_height,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		RasterWidth: 2400,
		DPI:         150,
		FontSize:    8,
		RowHeight:   18,
		MarginMM:    10,
		LogoWidth:   480,
		LogoHeight:  160,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "document", "not provided", "default document config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "document", "provided", "local document config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

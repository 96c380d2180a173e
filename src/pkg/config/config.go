package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
The configuration file is one JSON object with a section per package:

	{
	  "server":  {"address": "0.0.0.0", "port": 8401},
	  "export":  {"output_directory": "./out", "lookup_path": "./cfg/lookup.json"},
	  "storage": {"database_path": "./data/exports.db"}
	}

Each package decodes its own section into its own Config and fills the gaps
with its DefaultValueConfig.
*/
var (
	sections   = map[string]json.RawMessage{}
	sectionsMu sync.RWMutex
	loadedPath string
)

/*
InitializeConfig reads the configuration file. A missing file is not fatal:
every package then runs on its defaults.
*/
func InitializeConfig(configPath string) {
	e := LoadFile(configPath)
	if e != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unable to load config '%s', using %s", configPath, "default values")
		return
	}
	tl.Log(tl.Info, palette.Green, "Loaded config from '%s'", configPath)
}

// LoadFile reads and indexes the configuration file.
func LoadFile(configPath string) (e *xerr.Error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		e = xerr.NewError(err, "read config file", configPath)
		return e
	}
	return LoadBytes(configPath, content)
}

// LoadBytes indexes configuration content; source names it in logs.
func LoadBytes(source string, content []byte) (e *xerr.Error) {
	parsed := map[string]json.RawMessage{}
	err := json.Unmarshal(content, &parsed)
	if err != nil {
		e = xerr.NewError(err, "parse config JSON", source)
		return e
	}

	sectionsMu.Lock()
	sections = parsed
	loadedPath = source
	sectionsMu.Unlock()

	names := make([]string, 0, len(parsed))
	for name := range parsed {
		names = append(names, name)
	}
	tl.Log(tl.Verbose, palette.CyanDim, "Config '%s' has sections %v", source, names)
	return e
}

/*
Section decodes the named section into a new T. It returns nil when the
section is absent or malformed, so the caller's InitializeConfig keeps the
defaults.
*/
func Section[T any](name string) *T {
	sectionsMu.RLock()
	raw, exists := sections[name]
	source := loadedPath
	sectionsMu.RUnlock()

	if !exists {
		return nil
	}

	target := new(T)
	err := json.Unmarshal(raw, target)
	if err != nil {
		tl.Log(
			tl.Warning, palette.Yellow, "Section '%s' of '%s' is malformed (%s), ignoring it",
			name, source, err.Error(),
		)
		return nil
	}
	return target
}

/*
CheckIfEnvVarsPresent loads .env (if any) and warns about every listed
variable that is still unset.
*/
func CheckIfEnvVarsPresent(names ...string) (missing []string) {
	LoadDotEnv()
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.Yellow, "Environment variable %s is %s", name, "not set")
			missing = append(missing, name)
		}
	}
	return missing
}

// LoadDotEnv loads .env into the process environment without overriding set variables.
func LoadDotEnv(paths ...string) {
	err := godotenv.Load(paths...)
	if err != nil {
		tl.Log(tl.Debug, palette.BlueDim, "No .env loaded: %s", err.Error())
		return
	}
	tl.Log(tl.Verbose, palette.BlueDim, "Loaded environment from %s", dotEnvName(paths))
}

func dotEnvName(paths []string) string {
	if len(paths) == 0 {
		return "'.env'"
	}
	return fmt.Sprintf("%v", paths)
}

/*
GetPackageName returns the last path element of the calling function's
package, e.g. "echo-middleware" or "export".
*/
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	function := runtime.FuncForPC(pc)
	if function == nil {
		return "unknown"
	}

	name := function.Name()
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		name = name[slash+1:]
	}
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	return name
}

package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"permit-report/src/pkg/region"
	"permit-report/src/pkg/report"
)

/*
ensureOutputDirectory creates the target directory (and parents) if needed.

It uses os.MkdirAll and returns a *xerr.Error if creation fails.
*/
func ensureOutputDirectory(outputDirPath string) (e *xerr.Error) {
	err := os.MkdirAll(outputDirPath, 0o755)
	if err != nil {
		e = xerr.NewError(err, "create output directory", outputDirPath)
		return e
	}

	tl.Log(
		tl.Info1, palette.Blue, "Ensured output directory '%s'",
		outputDirPath,
	)

	return e
}

/*
saveExportFile writes rendered export bytes to the given path, overwriting any
existing file.
*/
func saveExportFile(destinationPath string, content []byte) (e *xerr.Error) {
	writeErr := os.WriteFile(destinationPath, content, 0o644)
	if writeErr != nil {
		e = xerr.NewError(writeErr, "write export file", destinationPath)
		return e
	}

	tl.Log(
		tl.Info1, palette.Green, "Saved export (%v bytes) to '%s'",
		len(content), destinationPath,
	)

	return e
}

/*
saveJSONToFile marshals the given value to pretty-printed JSON and writes it
to a .json file at the given path.
*/
func saveJSONToFile(destinationPath string, value any) (e *xerr.Error) {
	jsonBytes, marshalErr := json.MarshalIndent(value, "", "  ")
	if marshalErr != nil {
		e = xerr.NewError(marshalErr, "marshal value to JSON", destinationPath)
		return e
	}

	writeErr := os.WriteFile(destinationPath, jsonBytes, 0o644)
	if writeErr != nil {
		e = xerr.NewError(writeErr, "write JSON file", destinationPath)
		return e
	}

	tl.Log(
		tl.Info1, palette.Green, "Saved JSON data to '%s'",
		destinationPath,
	)

	return e
}

// LoadDataset reads a dataset JSON file.
func LoadDataset(datasetPath string) (dataset report.Dataset, e *xerr.Error) {
	file, openErr := os.Open(datasetPath)
	if openErr != nil {
		e = xerr.NewError(openErr, "open dataset file", datasetPath)
		return report.Dataset{}, e
	}
	defer func() {
		_ = file.Close()
	}()

	return report.DecodeDataset(file)
}

/*
SaveDataset writes a dataset next to a queued job so a worker can read it back
with LoadDataset. It returns the file path.
*/
func SaveDataset(directory string, dataset report.Dataset) (datasetPath string, e *xerr.Error) {
	e = ensureOutputDirectory(directory)
	if e != nil {
		return "", e
	}
	datasetPath = filepath.Join(directory, "dataset.json")
	e = saveJSONToFile(datasetPath, dataset)
	return datasetPath, e
}

/*
LoadResolver builds the region resolver from the locality lookup file
({"<lgu>": "<region code>"}). An empty path gives a resolver without lookup.
*/
func LoadResolver(lookupPath string) (resolver region.Resolver, e *xerr.Error) {
	if lookupPath == "" {
		return region.NewResolver(nil), e
	}

	content, readErr := os.ReadFile(lookupPath)
	if readErr != nil {
		e = xerr.NewError(readErr, "read locality lookup file", lookupPath)
		return region.Resolver{}, e
	}

	lookup := map[string]string{}
	unmarshalErr := json.Unmarshal(content, &lookup)
	if unmarshalErr != nil {
		e = xerr.NewError(unmarshalErr, "unmarshal locality lookup", lookupPath)
		return region.Resolver{}, e
	}

	unknown := 0
	for _, code := range lookup {
		if _, ok := region.ToInternalKey(code); !ok {
			unknown += 1
		}
	}
	if unknown > 0 {
		tl.Log(tl.Warning, palette.Yellow, "'%v' lookup entries in '%s' name an unknown region", unknown, lookupPath)
	}

	tl.Log(tl.Info1, palette.Cyan, "Loaded '%v' locality lookup entries from '%s'", len(lookup), filepath.Base(lookupPath))
	return region.NewResolver(lookup), e
}

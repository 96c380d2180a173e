package document

import (
	"image"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
LoadLogo opens the logo image and scales it down to fit inside
maxWidth x maxHeight pixels, keeping its aspect ratio.

An empty path means "no logo": the first page then prints the report title.
*/
func LoadLogo(logoPath string, maxWidth int, maxHeight int) (logo image.Image, e *xerr.Error) {
	if logoPath == "" {
		return nil, nil
	}

	// Open the logo using the imaging library (it honors EXIF orientation).
	original, openErr := imaging.Open(logoPath, imaging.AutoOrientation(true))
	if openErr != nil {
		e = xerr.NewError(openErr, "open logo image", logoPath)
		return
	}

	// Fit never upscales; a small logo keeps its size.
	logo = imaging.Fit(original, maxWidth, maxHeight, imaging.Lanczos)

	tl.Log(
		tl.Info1, palette.Blue, "Loaded logo '%s' (%vx%v)",
		logoPath, logo.Bounds().Dx(), logo.Bounds().Dy(),
	)
	return
}

/*
fitWidth resizes a page raster to exactly width pixels, preserving the aspect
ratio, so every page lands on the document at the same scale.
*/
func fitWidth(raster image.Image, width int) image.Image {
	if width <= 0 || raster.Bounds().Dx() == width {
		return raster
	}
	return imaging.Resize(raster, width, 0, imaging.Lanczos)
}

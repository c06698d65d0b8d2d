package drift

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CheckReflectionMap reads the header of a static reflection map and checks
// it is a vertical-cross cubemap: a 3x4 grid of square faces.
func CheckReflectionMap(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrReflectionMap, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrReflectionMap, path, err)
	}
	if cfg.Width <= 0 || cfg.Width%3 != 0 || cfg.Height%4 != 0 || cfg.Width/3 != cfg.Height/4 {
		return cfg, fmt.Errorf("%w: %s: %dx%d %s is not a vertical cross", ErrReflectionMap, path, cfg.Width, cfg.Height, format)
	}
	return cfg, nil
}

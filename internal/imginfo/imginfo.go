// Package imginfo reads basic facts about raster files without
// decoding the full pixel data.
package imginfo

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
)

// Info describes a PNG file's header.
type Info struct {
	Width    int
	Height   int
	HasAlpha bool
}

// Stat decodes only the PNG header of the file at path.
func Stat(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return Info{
		Width:    cfg.Width,
		Height:   cfg.Height,
		HasAlpha: hasAlpha(cfg.ColorModel),
	}, nil
}

func hasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	// Paletted PNGs may carry a tRNS chunk; DecodeConfig exposes the
	// palette, so check it for any non-opaque entry.
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

package config

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-jobform/pkg/renderers/html"
)

// Manifest converts the theme section into a go-theme manifest. It returns
// nil when no theme is configured.
func (t Theme) Manifest() *theme.Manifest {
	if t.Name == "" {
		return nil
	}
	manifest := &theme.Manifest{
		Name:   t.Name,
		Tokens: copyMap(t.Tokens),
		Assets: theme.Assets{Prefix: t.AssetPrefix},
	}
	if t.Stylesheet != "" {
		manifest.Assets.Files = map[string]string{html.StylesheetAsset: t.Stylesheet}
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, tokens := range t.Variants {
			manifest.Variants[name] = theme.Variant{Tokens: copyMap(tokens)}
		}
	}
	return manifest
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

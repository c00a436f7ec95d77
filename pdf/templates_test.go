package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Config(DefaultTemplate), Config("no-such-template"))
	assert.Equal(t, Config(DefaultTemplate), Config(""))
}

func TestTemplateNames(t *testing.T) {
	names := TemplateNames()
	assert.Len(t, names, 10)
	assert.Contains(t, names, "clean-modern")
	assert.Contains(t, names, "photo-gallery")
	assert.Contains(t, names, "compact")
}

func TestTemplateOverrides(t *testing.T) {
	assert.InDelta(t, 35.0, Config("compact").Margin, 1e-9)
	assert.InDelta(t, 60.0, Config("minimal").Margin, 1e-9)
	assert.InDelta(t, 26.0, Config("trade-bold").TitleSize, 1e-9)
	assert.Equal(t, "#1a4b8c", Config("professional-blue").TableHeaderBg)

	// Every template keeps usable text colors.
	for _, name := range TemplateNames() {
		cfg := Config(name)
		assert.NotEmpty(t, cfg.TextColor, name)
		assert.NotEmpty(t, cfg.TableHeaderBg, name)
		assert.Greater(t, cfg.Margin, 0.0, name)
	}
}

func TestHexRGB(t *testing.T) {
	r, g, b := hexRGB("#1a4b8c")
	assert.Equal(t, 0x1a, r)
	assert.Equal(t, 0x4b, g)
	assert.Equal(t, 0x8c, b)

	r, g, b = hexRGB("bogus")
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

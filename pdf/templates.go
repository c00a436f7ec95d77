// pdf/templates.go
package pdf

// TemplateConfig is a pure style descriptor. Templates only change how a
// quote looks, never what is rendered.
type TemplateConfig struct {
	Margin       float64
	TitleSize    float64
	HeaderHeight float64

	TextColor  string
	DimColor   string
	TitleColor string

	RowEven       string
	RowOdd        string
	TableHeaderBg string

	// HeaderBg fills the top band when set. AccentBg switches the quote
	// heading to a colored banner. AccentColor emphasises the grand total.
	HeaderBg    string
	AccentBg    string
	AccentColor string
}

// DefaultTemplate is used whenever a template id is unrecognised.
const DefaultTemplate = "clean-modern"

func baseConfig() TemplateConfig {
	return TemplateConfig{
		Margin:        50,
		TitleSize:     22,
		HeaderHeight:  120,
		TextColor:     "#333333",
		DimColor:      "#666666",
		TitleColor:    "#000000",
		RowEven:       "#f9f9f9",
		RowOdd:        "#ffffff",
		TableHeaderBg: "#333333",
	}
}

var templates = map[string]TemplateConfig{
	"clean-modern": baseConfig(),
	"professional-blue": func() TemplateConfig {
		c := baseConfig()
		c.TitleColor = "#1a4b8c"
		c.AccentBg = "#1a4b8c"
		c.AccentColor = "#1a4b8c"
		c.TableHeaderBg = "#1a4b8c"
		c.DimColor = "#555555"
		return c
	}(),
	"trade-bold": func() TemplateConfig {
		c := baseConfig()
		c.TitleSize = 26
		c.TitleColor = "#222222"
		c.AccentBg = "#f97316"
		c.AccentColor = "#f97316"
		c.TableHeaderBg = "#f97316"
		return c
	}(),
	"minimal": func() TemplateConfig {
		c := baseConfig()
		c.Margin = 60
		c.TitleSize = 18
		c.HeaderHeight = 90
		return c
	}(),
	"detailed": func() TemplateConfig {
		c := baseConfig()
		c.TitleColor = "#2d3748"
		c.AccentBg = "#2d3748"
		c.TableHeaderBg = "#2d3748"
		return c
	}(),
	"premium": func() TemplateConfig {
		c := baseConfig()
		c.TitleColor = "#1a1a2e"
		c.AccentBg = "#b8860b"
		c.AccentColor = "#b8860b"
		c.TableHeaderBg = "#1a1a2e"
		c.RowEven = "#faf8f0"
		c.DimColor = "#555555"
		return c
	}(),
	"compact": func() TemplateConfig {
		c := baseConfig()
		c.Margin = 35
		c.TitleSize = 16
		c.HeaderHeight = 80
		return c
	}(),
	"photo-gallery": func() TemplateConfig {
		c := baseConfig()
		c.AccentBg = "#2d5016"
		c.AccentColor = "#2d5016"
		c.TableHeaderBg = "#2d5016"
		return c
	}(),
	"itemised": func() TemplateConfig {
		c := baseConfig()
		c.AccentBg = "#4a1d96"
		c.AccentColor = "#4a1d96"
		c.TableHeaderBg = "#4a1d96"
		return c
	}(),
	"custom": func() TemplateConfig {
		c := baseConfig()
		c.AccentBg = "#f97316"
		c.AccentColor = "#f97316"
		c.TableHeaderBg = "#f97316"
		return c
	}(),
}

// Config returns the style for a template id, falling back to the default for
// anything unrecognised. Never errors on an unknown name.
func Config(templateID string) TemplateConfig {
	if cfg, ok := templates[templateID]; ok {
		return cfg
	}
	return templates[DefaultTemplate]
}

// TemplateNames lists every available template id.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}

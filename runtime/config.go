// runtime/config.go
package runtime

// Config mirrors the teacher's render.WindowConfig/DefaultWindowConfig
// shape, populated first from the KRB document's App-element properties
// and then overridden by CLI flags (never the reverse), per SPEC_FULL.md.
type Config struct {
	Title       string
	Width       int
	Height      int
	Resizable   bool
	ScaleFactor float32
	DebugInspector bool
}

// DefaultConfig mirrors the teacher's DefaultWindowConfig defaults.
func DefaultConfig() Config {
	return Config{
		Title:       "Kryon Application",
		Width:       800,
		Height:      600,
		Resizable:   true,
		ScaleFactor: 1.0,
	}
}

// ApplyAppProperties overlays properties carried by an App-type root
// element (width/height/title/resizable) onto the config, the same way
// the teacher's applyDirectPropertiesToConfig walks a root element's
// property list before the window is created.
func (c *Config) ApplyAppProperties(props []Property) {
	for _, p := range props {
		switch CanonicalPropertyName(p.NameHex) {
		case "window_width":
			if v, ok := p.AsInt(0); ok {
				c.Width = int(v)
			}
		case "window_height":
			if v, ok := p.AsInt(0); ok {
				c.Height = int(v)
			}
		case "window_title":
			if v, ok := p.AsString(""); ok && v != "" {
				c.Title = v
			}
		case "resizable":
			if v, ok := p.AsBool(c.Resizable); ok {
				c.Resizable = v
			}
		}
	}
}

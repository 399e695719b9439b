package domain

// Kind names a placeable component type. The set is closed.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindImage     Kind = "image"
	KindDivider   Kind = "divider"
	KindContainer Kind = "container"
)

// Kinds lists every kind in palette order.
var Kinds = []Kind{KindHeading, KindText, KindButton, KindImage, KindDivider, KindContainer}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// StyleKey is one of the five presentational attributes a component may carry.
type StyleKey string

const (
	StyleBackgroundColor StyleKey = "backgroundColor"
	StyleTextColor       StyleKey = "textColor"
	StyleFontSize        StyleKey = "fontSize"
	StylePadding         StyleKey = "padding"
	StyleTextAlign       StyleKey = "textAlign"
)

var StyleKeys = []StyleKey{StyleBackgroundColor, StyleTextColor, StyleFontSize, StylePadding, StyleTextAlign}

func (k StyleKey) Valid() bool {
	for _, known := range StyleKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Style is a sparse attribute map. Absent keys mean "use the renderer default".
type Style map[StyleKey]string

// Clone returns an independent copy. A nil style clones to an empty one.
func (s Style) Clone() Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a copy of s with every key of patch applied on top.
func (s Style) Merge(patch Style) Style {
	out := s.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Component is one placed instance on the canvas.
type Component struct {
	ID      string `json:"id"`
	Type    Kind   `json:"type"`
	Content string `json:"content"`
	Styles  Style  `json:"styles"`
}

// Clone deep-copies the component so callers never share a style map.
func (c Component) Clone() Component {
	c.Styles = c.Styles.Clone()
	return c
}

// ComponentPatch is a partial update. Nil fields are left untouched;
// the kind of a component is never patchable.
type ComponentPatch struct {
	Content *string `json:"content,omitempty"`
	Styles  Style   `json:"styles,omitempty"`
}

// ComponentDefinition is a palette entry: a kind plus its defaults.
type ComponentDefinition struct {
	Type           Kind   `json:"type" yaml:"type"`
	Label          string `json:"label" yaml:"label"`
	Icon           string `json:"icon" yaml:"icon"`
	DefaultContent string `json:"defaultContent" yaml:"defaultContent"`
	DefaultStyles  Style  `json:"defaultStyles" yaml:"defaultStyles"`
}

// TemplateComponent is one member of a block template, without an id.
type TemplateComponent struct {
	Type    Kind   `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
	Styles  Style  `json:"styles" yaml:"styles"`
}

// BlockTemplate is a named, ordered group of components inserted together.
type BlockTemplate struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Category    string              `json:"category" yaml:"category"`
	Description string              `json:"description,omitempty" yaml:"description"`
	Components  []TemplateComponent `json:"components" yaml:"components"`
}

// Package inspector decides which attributes of a component the editor
// offers and describes the controls used to edit them.
package inspector

import (
	"fmt"
	"slices"

	"sitebuilder/internal/domain"
)

// ContentMode says how the content field of a kind is edited.
type ContentMode string

const (
	ContentNone     ContentMode = "none"
	ContentText     ContentMode = "text"
	ContentURL      ContentMode = "url"
	ContentOptional ContentMode = "optional-text"
)

// Policy is the editable surface of one kind.
type Policy struct {
	Content ContentMode       `json:"content"`
	Styles  []domain.StyleKey `json:"styles"`
}

var (
	textStyles = []domain.StyleKey{
		domain.StyleFontSize, domain.StyleTextColor, domain.StyleTextAlign,
		domain.StyleBackgroundColor, domain.StylePadding,
	}
	boxStyles = []domain.StyleKey{domain.StyleBackgroundColor, domain.StylePadding}

	policies = map[domain.Kind]Policy{
		domain.KindHeading: {Content: ContentText, Styles: textStyles},
		domain.KindText:    {Content: ContentText, Styles: textStyles},
		domain.KindButton: {Content: ContentText, Styles: []domain.StyleKey{
			domain.StyleTextColor, domain.StyleTextAlign, domain.StyleBackgroundColor, domain.StylePadding,
		}},
		domain.KindImage: {Content: ContentURL, Styles: []domain.StyleKey{
			domain.StyleTextAlign, domain.StyleBackgroundColor, domain.StylePadding,
		}},
		domain.KindDivider:   {Content: ContentNone, Styles: boxStyles},
		domain.KindContainer: {Content: ContentOptional, Styles: boxStyles},
	}
)

// PolicyFor returns the policy for kind. Unknown kinds get an empty policy.
func PolicyFor(kind domain.Kind) Policy {
	p, ok := policies[kind]
	if !ok {
		return Policy{Content: ContentNone}
	}
	return Policy{Content: p.Content, Styles: slices.Clone(p.Styles)}
}

// ContentEditable reports whether the content field is offered.
func (p Policy) ContentEditable() bool {
	return p.Content != ContentNone
}

func (p Policy) StyleEditable(key domain.StyleKey) bool {
	return slices.Contains(p.Styles, key)
}

// ── Controls ───────────────────────────────────────────────

// InputKind is the widget the editor renders.
type InputKind string

const (
	InputTextarea InputKind = "textarea"
	InputURL      InputKind = "url"
	InputColor    InputKind = "color"
	InputSize     InputKind = "size"
	InputAlign    InputKind = "align"
)

// ContentKey addresses the content field in Apply and in control lists.
const ContentKey = "content"

// Control describes one editable field of the selected component.
type Control struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Input       InputKind `json:"input"`
	Placeholder string    `json:"placeholder,omitempty"`
	Value       string    `json:"value"`
	Options     []string  `json:"options,omitempty"`
	Optional    bool      `json:"optional,omitempty"`
}

type styleControl struct {
	label    string
	input    InputKind
	fallback string
	options  []string
}

// Display fallbacks for absent keys; they are shown, not stored.
var styleControls = map[domain.StyleKey]styleControl{
	domain.StyleFontSize:        {label: "Размер шрифта", input: InputSize, fallback: "16px"},
	domain.StyleTextColor:       {label: "Цвет текста", input: InputColor, fallback: "#000000"},
	domain.StyleTextAlign:       {label: "Выравнивание", input: InputAlign, fallback: "left", options: []string{"left", "center", "right"}},
	domain.StyleBackgroundColor: {label: "Фон", input: InputColor, fallback: "#ffffff"},
	domain.StylePadding:         {label: "Отступы", input: InputSize, fallback: "10px"},
}

// Controls lists the editor fields for comp: content first, then style keys
// in policy order.
func Controls(comp domain.Component) []Control {
	p := PolicyFor(comp.Type)
	out := make([]Control, 0, len(p.Styles)+1)

	switch p.Content {
	case ContentText, ContentOptional:
		out = append(out, Control{
			Key:      ContentKey,
			Label:    "Содержимое",
			Input:    InputTextarea,
			Value:    comp.Content,
			Optional: p.Content == ContentOptional,
		})
	case ContentURL:
		out = append(out, Control{
			Key:         ContentKey,
			Label:       "Содержимое",
			Input:       InputURL,
			Placeholder: "URL изображения",
			Value:       comp.Content,
		})
	}

	for _, key := range p.Styles {
		sc := styleControls[key]
		value, ok := comp.Styles[key]
		if !ok || value == "" {
			value = sc.fallback
		}
		ctl := Control{
			Key:     string(key),
			Label:   sc.label,
			Input:   sc.input,
			Value:   value,
			Options: sc.options,
		}
		if sc.input != InputAlign {
			ctl.Placeholder = sc.fallback
		}
		out = append(out, ctl)
	}
	return out
}

// ── Apply ──────────────────────────────────────────────────

// Editor is the part of the canvas the inspector writes through.
type Editor interface {
	Get(id string) (domain.Component, bool)
	Update(id string, patch domain.ComponentPatch) bool
	UpdateStyle(id string, key domain.StyleKey, value string) bool
}

// Apply writes one control value after checking it against the kind's
// policy. key is ContentKey or a style key.
func Apply(ed Editor, id, key, value string) error {
	comp, ok := ed.Get(id)
	if !ok {
		return fmt.Errorf("component %s: %w", id, domain.ErrNotFound)
	}
	p := PolicyFor(comp.Type)

	if key == ContentKey {
		if !p.ContentEditable() {
			return fmt.Errorf("%s content: %w", comp.Type, domain.ErrNotEditable)
		}
		ed.Update(id, domain.ComponentPatch{Content: &value})
		return nil
	}

	styleKey := domain.StyleKey(key)
	if !styleKey.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStyleKey, key)
	}
	if !p.StyleEditable(styleKey) {
		return fmt.Errorf("%s %s: %w", comp.Type, key, domain.ErrNotEditable)
	}
	if styleKey == domain.StyleTextAlign && !slices.Contains(styleControls[styleKey].options, value) {
		return fmt.Errorf("%w: textAlign %q must be left, center or right", domain.ErrInvalidValue, value)
	}
	ed.UpdateStyle(id, styleKey, value)
	return nil
}

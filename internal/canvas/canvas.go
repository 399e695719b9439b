// Package canvas is the page-composition model: an ordered list of component
// instances plus the selection and drag-over markers the editor shows.
//
// Operations that name a missing id or an unknown kind are no-ops and report
// false; they never return errors. A Canvas is not safe for concurrent use.
package canvas

import (
	"slices"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/id"
)

// Catalog supplies defaults for new instances.
type Catalog interface {
	Lookup(kind domain.Kind) (domain.ComponentDefinition, bool)
}

type Canvas struct {
	catalog    Catalog
	newID      func() string
	components []domain.Component
	selected   string
	dragOver   string
}

type Option func(*Canvas)

// WithIDFunc replaces the component id generator.
func WithIDFunc(fn func() string) Option {
	return func(c *Canvas) { c.newID = fn }
}

func New(catalog Catalog, opts ...Option) *Canvas {
	c := &Canvas{
		catalog: catalog,
		newID:   id.NewComponentID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Mutations ──────────────────────────────────────────────

// Add appends a new instance of kind with the catalog defaults and selects it.
func (c *Canvas) Add(kind domain.Kind) (string, bool) {
	if !kind.Valid() {
		return "", false
	}
	def, ok := c.catalog.Lookup(kind)
	if !ok {
		return "", false
	}
	comp := domain.Component{
		ID:      c.newID(),
		Type:    kind,
		Content: def.DefaultContent,
		Styles:  def.DefaultStyles.Clone(),
	}
	c.components = append(c.components, comp)
	c.selected = comp.ID
	return comp.ID, true
}

// Update merges patch into the instance. Style keys outside the known set are
// ignored. The kind never changes.
func (c *Canvas) Update(id string, patch domain.ComponentPatch) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	comp := c.components[i]
	if patch.Content != nil {
		comp.Content = *patch.Content
	}
	if len(patch.Styles) > 0 {
		styles := comp.Styles.Clone()
		for k, v := range patch.Styles {
			if k.Valid() {
				styles[k] = v
			}
		}
		comp.Styles = styles
	}
	c.components[i] = comp
	return true
}

// UpdateStyle sets one style key. It is not filtered by kind; the
// inspector decides which keys it offers.
func (c *Canvas) UpdateStyle(id string, key domain.StyleKey, value string) bool {
	if !key.Valid() {
		return false
	}
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	styles := c.components[i].Styles.Clone()
	styles[key] = value
	c.components[i].Styles = styles
	return true
}

// Remove deletes the instance and clears any marker pointing at it.
func (c *Canvas) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.components = slices.Delete(c.components, i, i+1)
	if c.selected == id {
		c.selected = ""
	}
	if c.dragOver == id {
		c.dragOver = ""
	}
	return true
}

// Reorder moves sourceID to the position currently held by targetID.
// Both positions are resolved now, so instances added or removed since the
// drag started cannot misplace the drop.
func (c *Canvas) Reorder(sourceID, targetID string) bool {
	if sourceID == targetID {
		return false
	}
	from, to := c.indexOf(sourceID), c.indexOf(targetID)
	if from < 0 || to < 0 {
		return false
	}
	ok := c.Move(from, to)
	c.dragOver = ""
	return ok
}

// Move removes the instance at from and reinserts it at index to.
// Instances outside the moved range keep their relative order.
func (c *Canvas) Move(from, to int) bool {
	n := len(c.components)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	moved := c.components[from]
	c.components = slices.Delete(c.components, from, from+1)
	c.components = slices.Insert(c.components, to, moved)
	return true
}

// InstantiateTemplate appends a fresh copy of every template member, in
// template order, and returns the new ids.
func (c *Canvas) InstantiateTemplate(tmpl domain.BlockTemplate) []string {
	ids := make([]string, 0, len(tmpl.Components))
	for _, member := range tmpl.Components {
		if !member.Type.Valid() {
			continue
		}
		comp := domain.Component{
			ID:      c.newID(),
			Type:    member.Type,
			Content: member.Content,
			Styles:  member.Styles.Clone(),
		}
		c.components = append(c.components, comp)
		ids = append(ids, comp.ID)
	}
	return ids
}

// Replace swaps in a whole snapshot, e.g. when a project is opened.
// Markers are cleared.
func (c *Canvas) Replace(components []domain.Component) {
	c.components = cloneAll(components)
	c.selected = ""
	c.dragOver = ""
}

// Clear empties the canvas.
func (c *Canvas) Clear() {
	c.Replace(nil)
}

// ── Selection & drag-over ──────────────────────────────────

func (c *Canvas) Select(id string) bool {
	if c.indexOf(id) < 0 {
		return false
	}
	c.selected = id
	return true
}

func (c *Canvas) ClearSelection() {
	c.selected = ""
}

func (c *Canvas) SelectedID() string {
	return c.selected
}

// Selected returns a copy of the selected instance.
func (c *Canvas) Selected() (domain.Component, bool) {
	if c.selected == "" {
		return domain.Component{}, false
	}
	return c.Get(c.selected)
}

// DragOver marks id as the current drop target.
func (c *Canvas) DragOver(id string) bool {
	if c.indexOf(id) < 0 {
		return false
	}
	c.dragOver = id
	return true
}

func (c *Canvas) ClearDragOver() {
	c.dragOver = ""
}

func (c *Canvas) DragOverID() string {
	return c.dragOver
}

// ── Queries ────────────────────────────────────────────────

func (c *Canvas) Get(id string) (domain.Component, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return domain.Component{}, false
	}
	return c.components[i].Clone(), true
}

// Components returns a deep copy in display order.
func (c *Canvas) Components() []domain.Component {
	return cloneAll(c.components)
}

func (c *Canvas) Len() int {
	return len(c.components)
}

func (c *Canvas) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.components, func(comp domain.Component) bool {
		return comp.ID == id
	})
}

func cloneAll(in []domain.Component) []domain.Component {
	out := make([]domain.Component, len(in))
	for i, comp := range in {
		out[i] = comp.Clone()
	}
	return out
}

// Package id generates identifiers for canvas components and projects.
//
// Component ids are prefixed ULIDs ("cmp_01J..."), so two components added in
// the same millisecond still get distinct, sortable ids. Project ids are UUIDs.
package id

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const ComponentPrefix = "cmp"

// Generator produces monotonic ULIDs. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewComponentID returns a fresh component id from the default generator.
func NewComponentID() string {
	return Default().WithPrefix(ComponentPrefix)
}

func NewProjectID() string {
	return uuid.NewString()
}

// IsComponentID reports whether s looks like a generated component id.
func IsComponentID(s string) bool {
	rest, ok := strings.CutPrefix(s, ComponentPrefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}

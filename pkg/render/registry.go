// Package render is the capability-set interface over call/message
// renderers: a UI panel that wants to present a call or message as text
// looks one up by name rather than the core dispatching to it directly.
// A named factory registry, following the classic plugin-registration
// pattern of one map per capability plus panic-on-duplicate-registration.
package render

import (
	"fmt"
	"sort"

	"firestige.xyz/sipcore/internal/dialog"
	"firestige.xyz/sipcore/internal/sip"
)

// Renderer is the capability set a UI panel needs to present a call or a
// single message as text. It is a collaborator interface built on top of
// the dialog core, which only guarantees GetAttribute and GetMsgHeader
// as raw data sources.
type Renderer interface {
	Name() string
	RenderCall(c *dialog.Call) string
	RenderMessage(m *sip.Message) string
}

// Factory builds a fresh Renderer instance; renderers are stateless here,
// but the factory shape allows a stateful renderer (e.g. one holding
// column width preferences) to be added later without changing the
// registry.
type Factory func() Renderer

var renderers = make(map[string]Factory)

// Register installs a renderer factory under name. Panics on a duplicate
// name. A duplicate registration is a compile-time bug, since this
// registry is populated from init() functions, never from user input.
func Register(name string, factory Factory) {
	if name == "" {
		panic("render: renderer name cannot be empty")
	}
	if factory == nil {
		panic("render: renderer factory cannot be nil")
	}
	if _, exists := renderers[name]; exists {
		panic(fmt.Sprintf("render: renderer %q already registered", name))
	}
	renderers[name] = factory
}

// ErrNotFound is returned by Get for an unregistered renderer name.
var ErrNotFound = fmt.Errorf("render: renderer not found")

// Get returns the named renderer's factory.
func Get(name string) (Factory, error) {
	factory, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("renderer %q: %w", name, ErrNotFound)
	}
	return factory, nil
}

// List returns every registered renderer name, sorted.
func List() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("line", func() Renderer { return lineRenderer{} })
}

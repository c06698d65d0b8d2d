// Package backend is the boundary to the graphics API: the renderer that
// uploads geometry and executes the draw map built by the pipeline.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gekko3d/drift/logging"
	"github.com/gekko3d/drift/render/passes"
	"github.com/gekko3d/drift/render/pipeline"
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
)

var (
	ErrUnknownBackend = errors.New("backend: unknown backend")
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Name identifies a registered backend.
type Name string

// Capabilities describes what the graphics device offers.
type Capabilities struct {
	Vendor        string
	MaxAnisotropy int
	// ElementBufferWorkaround reports whether the backend can rebind the
	// element buffer explicitly for drivers that lose it.
	ElementBufferWorkaround bool
}

// InitRequest is everything a backend needs to build its passes.
type InitRequest struct {
	Passes     []passes.Info
	IDs        *strid.Map
	ShaderPath string
	Width      int
	Height     int
	// Defines are the upper-cased active conditions, handed to shaders.
	Defines passes.ConditionSet
}

// Frame is one frame's worth of work for Render.
type Frame struct {
	Width    int
	Height   int
	IDs      *strid.Map
	Passes   *pipeline.PassTable
	DrawMap  pipeline.DrawMap
	Uniforms *pipeline.Uniforms
}

// TextureInfo describes how a texture file should be loaded.
type TextureInfo struct {
	Cube          bool
	VerticalCross bool
	Mipmap        bool
	Anisotropy    int
	MaxSize       int
}

// Backend executes frames on a graphics device.
type Backend interface {
	// Initialize builds the passes in req and returns the ones it accepted.
	Initialize(req InitRequest) ([]passes.Info, error)
	Render(f Frame) error
	SetStaticVertexData(nodes []*scene.Node) error
	SetDynamicVertexData(nodes []*scene.Node) error
	LoadTexture(path string, info TextureInfo) (uint32, error)
	Capabilities() Capabilities
	// SetLogging turns per-call logging on or off, typically for one frame.
	SetLogging(enabled bool)
	SetElementBufferWorkaround(enabled bool)
	// Clear releases device resources; Initialize must be called again.
	Clear()
}

// Factory creates a backend that logs through log.
type Factory func(log logging.Logger) Backend

var registry = struct {
	sync.Mutex
	factories map[Name]Factory
}{factories: make(map[Name]Factory)}

// Register makes a backend available to Open. Registering a name twice
// panics.
func Register(name Name, f Factory) {
	registry.Lock()
	defer registry.Unlock()
	if f == nil {
		panic(fmt.Sprintf("backend: Register %s with nil factory", name))
	}
	if _, dup := registry.factories[name]; dup {
		panic(fmt.Sprintf("backend: Register called twice for %s", name))
	}
	registry.factories[name] = f
}

// Open creates the backend registered under name.
func Open(name Name, log logging.Logger) (Backend, error) {
	registry.Lock()
	f, ok := registry.factories[name]
	registry.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Names())
	}
	return f(logging.OrNop(log)), nil
}

// Names lists the registered backends.
func Names() []Name {
	registry.Lock()
	defer registry.Unlock()
	out := make([]Name, 0, len(registry.factories))
	for n := range registry.factories {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/drift/logging"
	"github.com/gekko3d/drift/render/passes"
	"github.com/gekko3d/drift/render/scene"
)

// HeadlessName is the registry name of the Headless backend.
const HeadlessName Name = "headless"

func init() {
	Register(HeadlessName, func(log logging.Logger) Backend { return NewHeadless(log) })
}

// Headless validates pass configuration and counts work without a device.
// It serves dedicated servers, tools and tests.
type Headless struct {
	log  logging.Logger
	caps Capabilities

	initialized bool
	passes      []passes.Info
	defines     passes.ConditionSet
	logFrame    bool
	workaround  bool

	// Frames and Draws count rendered frames and records drawn.
	Frames int
	Draws  int
	// LoggedFrames counts frames rendered with logging on.
	LoggedFrames int
	LastFrame    Frame

	StaticDrawables  int
	DynamicDrawables int

	textures map[string]uint32
	nextTex  uint32
}

func NewHeadless(log logging.Logger) *Headless {
	return &Headless{
		log:      logging.Component(log, "headless"),
		caps:     Capabilities{Vendor: "headless", MaxAnisotropy: 1},
		textures: make(map[string]uint32),
	}
}

// SetCapabilities overrides the reported capabilities.
func (h *Headless) SetCapabilities(c Capabilities) {
	h.caps = c
}

// Initialize rejects passes without draw groups and passes whose shader
// files are missing under req.ShaderPath.
func (h *Headless) Initialize(req InitRequest) ([]passes.Info, error) {
	for _, p := range req.Passes {
		if len(p.DrawGroups) == 0 {
			return nil, fmt.Errorf("pass %q has no draw groups", p.Name)
		}
		if req.ShaderPath == "" {
			continue
		}
		for _, shader := range []string{p.VertexShader, p.FragmentShader} {
			if shader == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(req.ShaderPath, shader)); err != nil {
				return nil, fmt.Errorf("pass %q: shader: %w", p.Name, err)
			}
		}
	}
	h.passes = passes.Clone(req.Passes)
	h.defines = req.Defines
	h.initialized = true
	h.log.Debugf("%d passes, defines %v", len(h.passes), req.Defines.Sorted())
	return passes.Clone(h.passes), nil
}

// Defines returns the conditions the last Initialize received.
func (h *Headless) Defines() passes.ConditionSet {
	return h.defines
}

func (h *Headless) Initialized() bool {
	return h.initialized
}

func (h *Headless) Render(f Frame) error {
	if !h.initialized {
		return ErrNotInitialized
	}
	for _, p := range f.Passes.Passes() {
		if !p.Enabled {
			continue
		}
		n := 0
		for _, list := range f.DrawMap[p.ID] {
			n += list.Len()
		}
		h.Draws += n
		if h.logFrame {
			h.log.Debugf("pass %s: %d draws", p.Name, n)
		}
	}
	if h.logFrame {
		h.LoggedFrames++
	}
	h.Frames++
	h.LastFrame = f
	return nil
}

func countDrawables(nodes []*scene.Node) int {
	n := 0
	for _, node := range nodes {
		if node == nil {
			continue
		}
		n += node.Drawables().Len() + countDrawables(node.Children())
	}
	return n
}

func (h *Headless) SetStaticVertexData(nodes []*scene.Node) error {
	h.StaticDrawables = countDrawables(nodes)
	return nil
}

func (h *Headless) SetDynamicVertexData(nodes []*scene.Node) error {
	h.DynamicDrawables = countDrawables(nodes)
	return nil
}

// LoadTexture hands out a stable handle per existing file.
func (h *Headless) LoadTexture(path string, info TextureInfo) (uint32, error) {
	if tex, ok := h.textures[path]; ok {
		return tex, nil
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("texture: %w", err)
	}
	h.nextTex++
	h.textures[path] = h.nextTex
	return h.nextTex, nil
}

func (h *Headless) Capabilities() Capabilities {
	return h.caps
}

func (h *Headless) SetLogging(enabled bool) {
	h.logFrame = enabled
}

func (h *Headless) SetElementBufferWorkaround(enabled bool) {
	h.workaround = enabled
}

// ElementBufferWorkaround reports whether the workaround was enabled.
func (h *Headless) ElementBufferWorkaround() bool {
	return h.workaround
}

func (h *Headless) Clear() {
	h.initialized = false
	h.passes = nil
	clear(h.textures)
	h.nextTex = 0
}

// Package drift is the multi-pass renderer front end of the game: it owns
// cameras, scene draw lists and pass configuration, and hands each frame's
// draw map to a graphics backend.
package drift

import (
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/gekko3d/drift/logging"
	"github.com/gekko3d/drift/render/backend"
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/passes"
	"github.com/gekko3d/drift/render/pipeline"
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera names set up every frame.
const (
	CameraDefault = "default"
	CameraSkybox  = "skybox"
)

const (
	nearDistance      float32 = 0.1
	skyboxFarDistance float32 = 10000
)

var goos = runtime.GOOS

type Graphics struct {
	ids     *strid.Map
	backend backend.Backend
	log     logging.Logger

	pipe *pipeline.Pipeline
	cams *core.Cameras

	settings     Settings
	conditions   passes.ConditionSet
	infos        []passes.Info
	initialized  bool
	logNextFrame bool

	fixedSkybox  bool
	sunDirection mgl32.Vec3
	closeShadow  float32
	lighting     core.Lighting
	reflection   uint32
	shadows      [core.ShadowCascadeCount]core.ShadowCascade
}

// NewGraphics creates a renderer front end. A nil backend is opened from
// Settings.Backend during Init.
func NewGraphics(ids *strid.Map, b backend.Backend, log logging.Logger) *Graphics {
	if ids == nil {
		ids = strid.NewMap()
	}
	log = logging.OrNop(log)
	return &Graphics{
		ids:          ids,
		backend:      b,
		log:          log,
		pipe:         pipeline.New(ids, log),
		cams:         core.NewCameras(),
		settings:     DefaultSettings(),
		conditions:   passes.NewConditionSet(),
		fixedSkybox:  true,
		sunDirection: core.WorldUp,
		closeShadow:  core.DefaultCloseShadow,
		lighting:     core.DefaultLighting(),
	}
}

// Init checks the backend, derives the active conditions, loads the static
// reflection map and builds the passes. On error the caller should fall
// back to a simpler renderer.
func (g *Graphics) Init(s Settings) error {
	s.normalize()
	g.settings = s

	if g.backend == nil {
		b, err := backend.Open(backend.Name(s.Backend), g.log)
		if err != nil {
			g.log.Errorf("Initialization of renderer failed: %v", err)
			return fmt.Errorf("%w: %w", ErrBackendInit, err)
		}
		g.backend = b
	}

	caps := g.backend.Capabilities()
	// Intel's Windows driver loses the element buffer binding of VAOs
	if goos == "windows" && caps.Vendor == "Intel" && caps.ElementBufferWorkaround {
		g.backend.SetElementBufferWorkaround(true)
	}

	g.conditions = s.Conditions()
	g.closeShadow = s.CloseShadow
	g.lighting = s.Lighting
	g.pipe.SetCullOptions(s.Cull)

	if s.StaticReflectionMap != "" {
		g.loadReflectionMap(s.StaticReflectionMap)
	}

	err := g.ReloadShaders()
	g.initialized = err == nil
	return err
}

func (g *Graphics) loadReflectionMap(path string) {
	if _, err := CheckReflectionMap(path); err != nil {
		g.log.Errorf("%v", err)
		return
	}
	tex, err := g.backend.LoadTexture(path, backend.TextureInfo{
		Cube:          true,
		VerticalCross: true,
		Mipmap:        true,
		Anisotropy:    g.settings.Anisotropy,
		MaxSize:       maxTextureSize(g.settings.TextureSize),
	})
	if err != nil {
		g.log.Errorf("reflection map %s: %v", path, err)
		return
	}
	g.reflection = tex
}

// Deinit releases backend resources.
func (g *Graphics) Deinit() {
	if g.backend != nil {
		g.backend.Clear()
	}
	g.initialized = false
}

// ReloadShaders reloads the pass list and rebuilds the backend passes. If
// anything fails the previous pass table, camera bindings and uniforms stay
// in place.
func (g *Graphics) ReloadShaders() error {
	if g.backend == nil {
		return ErrNotInitialized
	}
	path := filepath.Join(g.settings.ShaderPath, g.settings.RenderConfig)
	list, err := passes.Load(path)
	if err != nil {
		g.log.Errorf("Unable to load pass information, falling back: %v", err)
		return err
	}
	for _, msg := range passes.Lint(list.Passes, passes.KnownConditions) {
		g.log.Warnf("%s", msg)
	}

	kept, pruned, err := passes.Prune(list.Passes, g.conditions)
	if err != nil {
		g.log.Warnf("%v", err)
	}
	for _, name := range pruned {
		g.log.Debugf("pass %s disabled by its conditions", name)
	}

	accepted, err := g.backend.Initialize(backend.InitRequest{
		Passes:     passes.Clone(kept),
		IDs:        g.ids,
		ShaderPath: g.settings.ShaderPath,
		Width:      g.settings.Width,
		Height:     g.settings.Height,
		Defines:    g.conditions.Upper(),
	})
	if err != nil {
		g.log.Errorf("Initialization of renderer failed, falling back: %v", err)
		return fmt.Errorf("%w: %w", ErrBackendInit, err)
	}

	table := pipeline.NewPassTable(g.ids, accepted)
	declared := make(map[string]map[string][]float32, len(accepted))
	for _, info := range accepted {
		declared[info.Name] = info.Uniforms
	}
	uniforms := pipeline.NewUniformsFor(g.ids, table, declared)
	g.bindPassTextures(accepted, uniforms)
	g.pipe.Configure(table, uniforms)
	g.pipe.PublishViewport(g.settings.Width, g.settings.Height)
	if g.reflection != 0 {
		g.pipe.PublishReflectionCube(g.reflection)
	}
	g.infos = passes.Clone(accepted)

	g.log.Infof("Renderer initialization successful: %d passes", table.Len())
	if g.initialized {
		g.logPassStatus()
		g.logNextFrame = true
	}
	return nil
}

// bindPassTextures loads the textures each pass declares and binds them as
// pass-scoped samplers. Relative paths are resolved against the shader
// path. A texture that fails to load is logged and left unbound.
func (g *Graphics) bindPassTextures(infos []passes.Info, u *pipeline.Uniforms) {
	for _, info := range infos {
		if len(info.Textures) == 0 {
			continue
		}
		pass := g.ids.Add(info.Name)
		for _, sampler := range slices.Sorted(maps.Keys(info.Textures)) {
			path := info.Textures[sampler]
			if !filepath.IsAbs(path) {
				path = filepath.Join(g.settings.ShaderPath, path)
			}
			tex, err := g.backend.LoadTexture(path, backend.TextureInfo{
				Mipmap:     true,
				Anisotropy: g.settings.Anisotropy,
				MaxSize:    maxTextureSize(g.settings.TextureSize),
			})
			if err != nil {
				g.log.Errorf("pass %s: texture %s: %v", info.Name, sampler, err)
				continue
			}
			u.SetPassTexture(pass, scene.Texture{ID: g.ids.Add(sampler), Handle: tex, Target: scene.Texture2D})
		}
	}
}

func (g *Graphics) logPassStatus() {
	if !g.log.DebugEnabled() {
		return
	}
	for _, p := range g.pipe.Passes().Passes() {
		cam := g.ids.String(p.Camera)
		if cam == "" {
			cam = "-"
		}
		g.log.Debugf("pass %s: enabled=%t camera=%s groups=%d", p.Name, p.Enabled, cam, len(p.DrawGroups))
	}
}

// ReloadIfChanged reloads the shaders when w saw changes. It returns whether
// a reload was attempted.
func (g *Graphics) ReloadIfChanged(w *ShaderWatcher) (bool, error) {
	if w == nil || !w.Changed() {
		return false, nil
	}
	return true, g.ReloadShaders()
}

// SetupScene places the cameras for this frame, publishes camera and
// lighting uniforms and assembles the draw map.
func (g *Graphics) SetupScene(fov, viewDistance float32, camPosition mgl32.Vec3, camRotation mgl32.Quat, dynamicReflectionSample mgl32.Vec3) {
	prof := g.pipe.Profiler()
	prof.BeginScope(pipeline.ScopeSetup)

	w, h := float32(g.settings.Width), float32(g.settings.Height)
	g.pipe.SetEye(camPosition)

	def := g.cams.SetPerspective(CameraDefault, camPosition, camRotation, fov, nearDistance, viewDistance, w, h)

	var skyPosition mgl32.Vec3
	if g.fixedSkybox {
		skyPosition[2] = camPosition[2]
	}
	g.cams.SetPerspective(CameraSkybox, skyPosition, camRotation, fov, nearDistance, skyboxFarDistance, w, h)

	lightRotation := core.LightRotation(g.sunDirection)
	for i := range g.shadows {
		c := core.PlaceShadowCascade(i, g.closeShadow, camPosition, camRotation, lightRotation)
		cam := g.cams.SetOrthographic(c.Name, c.Position, c.Rotation, c.BoxMin, c.BoxMax)
		g.pipe.PublishShadowMatrix(c.Suffix, core.ShadowReconstruction(def.InverseView, cam))
		g.shadows[i] = c
	}

	g.pipe.PublishPassCameras(g.cams)
	g.pipe.PublishDefaultCamera(def, g.sunDirection)
	g.pipe.PublishLighting(g.lighting)
	prof.EndScope(pipeline.ScopeSetup)

	g.pipe.AssembleDrawMap()
}

// DrawScene renders the assembled frame.
func (g *Graphics) DrawScene() error {
	if !g.initialized {
		return ErrNotInitialized
	}
	prof := g.pipe.Profiler()
	prof.BeginScope(pipeline.ScopeDraw)
	defer prof.EndScope(pipeline.ScopeDraw)

	g.backend.SetLogging(g.logNextFrame)
	err := g.backend.Render(backend.Frame{
		Width:    g.settings.Width,
		Height:   g.settings.Height,
		IDs:      g.ids,
		Passes:   g.pipe.Passes(),
		DrawMap:  g.pipe.DrawMap(),
		Uniforms: g.pipe.Uniforms(),
	})
	g.backend.SetLogging(false)
	g.logNextFrame = false
	if err != nil {
		g.log.Errorf("render: %v", err)
		return err
	}
	return nil
}

// AddStaticNode adds the drawables of node to the static index and
// rebuilds the index for the groups it touched.
func (g *Graphics) AddStaticNode(node *scene.Node) {
	node.Traverse(g.pipe.Static(), mgl32.Ident4())
	g.pipe.Static().Optimize()
}

// AddDynamicNode adds the drawables of node to this frame's dynamic list.
func (g *Graphics) AddDynamicNode(node *scene.Node) {
	node.Traverse(g.pipe.Dynamic(), mgl32.Ident4())
}

func (g *Graphics) ClearStaticDrawables() {
	g.pipe.Static().Clear()
}

func (g *Graphics) ClearDynamicDrawables() {
	g.pipe.Dynamic().Clear()
}

func (g *Graphics) BindStaticVertexData(nodes []*scene.Node) error {
	if g.backend == nil {
		return ErrNotInitialized
	}
	return g.backend.SetStaticVertexData(nodes)
}

// BindDynamicVertexData uploads nodes plus a node holding the full-screen
// quad, so the quad's geometry lives in the dynamic buffer.
func (g *Graphics) BindDynamicVertexData(nodes []*scene.Node) error {
	if g.backend == nil {
		return ErrNotInitialized
	}
	quad := scene.NewNode()
	quad.Drawables().Insert(scene.TwoDimGroup, g.pipe.FullScreenQuad())
	return g.backend.SetDynamicVertexData(append(slices.Clip(nodes), quad))
}

func (g *Graphics) SetCloseShadow(v float32) {
	g.closeShadow = v
}

func (g *Graphics) SetFixedSkybox(enable bool) {
	g.fixedSkybox = enable
}

func (g *Graphics) SetSunDirection(dir mgl32.Vec3) {
	g.sunDirection = dir
}

func (g *Graphics) SetLighting(l core.Lighting) {
	g.lighting = l
}

// SetContrast is accepted for interface compatibility; contrast is a
// shader setting here.
func (g *Graphics) SetContrast(float32) {}

func (g *Graphics) GetMaxAnisotropy() int {
	if g.backend == nil {
		return 1
	}
	return max(1, g.backend.Capabilities().MaxAnisotropy)
}

func (g *Graphics) AntialiasingSupported() bool { return true }

func (g *Graphics) GetShadows() bool { return true }

func (g *Graphics) Initialized() bool { return g.initialized }

func (g *Graphics) DrawMap() pipeline.DrawMap { return g.pipe.DrawMap() }

func (g *Graphics) Cameras() *core.Cameras { return g.cams }

func (g *Graphics) Stats() pipeline.FrameStats { return g.pipe.Stats() }

func (g *Graphics) Pipeline() *pipeline.Pipeline { return g.pipe }

func (g *Graphics) Conditions() passes.ConditionSet { return g.conditions }

// ShadowCascades returns where the shadow cameras went last frame.
func (g *Graphics) ShadowCascades() [core.ShadowCascadeCount]core.ShadowCascade {
	return g.shadows
}

// PassInfos returns a copy of the active pass configuration.
func (g *Graphics) PassInfos() []passes.Info {
	return passes.Clone(g.infos)
}

package drift

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gekko3d/drift/logging"
	"github.com/gekko3d/drift/render/backend"
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/passes"
	"github.com/gekko3d/drift/render/pipeline"
	"github.com/gekko3d/drift/render/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passList = `
version: 1.0.0
passes:
  - name: shadows1
    draw_groups: [normal_noblend]
    fields:
      camera: shadow1
      conditions: shadows
  - name: opaque
    draw_groups: [normal_noblend]
    fields:
      camera: default
      shadowMatrix: "1"
  - name: depth
    draw_groups: [normal_noblend]
    fields:
      camera: default
  - name: bloom
    draw_groups: [full screen rect]
    fields:
      conditions: bloom && !fsaa
  - name: hires
    draw_groups: [normal_noblend]
    fields:
      conditions: reflections_high
`

type fixture struct {
	g        *Graphics
	headless *backend.Headless
	settings Settings
	dir      string
	log      *bytes.Buffer
}

func writePassList(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "passes.yaml"), []byte(content), 0o644))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	writePassList(t, dir, passList)

	var out bytes.Buffer
	log := logging.NewDefaultLoggerTo(&out, &out, "drift", true)
	h := backend.NewHeadless(log)

	s := DefaultSettings()
	s.ShaderPath = dir
	s.RenderConfig = "passes.yaml"
	s.Width, s.Height = 800, 600
	s.ReflectionType = 1
	return &fixture{g: NewGraphics(nil, h, log), headless: h, settings: s, dir: dir, log: &out}
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, f.g.Init(f.settings))
	require.True(t, f.g.Initialized())
}

func (f *fixture) setup() {
	f.g.SetupScene(45, 1000, mgl32.Vec3{0, 0, 2}, mgl32.QuatIdent(), mgl32.Vec3{})
}

func passNames(infos []passes.Info) []string {
	var out []string
	for _, i := range infos {
		out = append(out, i.Name)
	}
	return out
}

func (f *fixture) list(pass, group string) *pipeline.RecordList {
	ids := f.g.Pipeline().IDs()
	p, _ := ids.Lookup(pass)
	gr, _ := ids.Lookup(group)
	return f.g.DrawMap().Get(p, gr)
}

func TestInit_PrunesByConditions(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	assert.Equal(t, []string{"shadows1", "opaque", "depth", "bloom"}, passNames(f.g.PassInfos()))
	assert.Equal(t, []string{"bloom", "normalmaps", "reflections_low", "shadows"}, f.g.Conditions().Sorted())
	assert.Equal(t, []string{"BLOOM", "NORMALMAPS", "REFLECTIONS_LOW", "SHADOWS"}, f.headless.Defines().Sorted())
	assert.Equal(t, 4, f.g.Pipeline().Passes().Len())
}

func TestInit_Failures(t *testing.T) {
	f := newFixture(t)
	f.settings.RenderConfig = "missing.yaml"
	err := f.g.Init(f.settings)
	assert.ErrorIs(t, err, passes.ErrPassListLoad)
	assert.False(t, f.g.Initialized())
	assert.Contains(t, f.log.String(), "ERROR")
	assert.ErrorIs(t, f.g.DrawScene(), ErrNotInitialized)

	f = newFixture(t)
	writePassList(t, f.dir, "passes:\n  - name: broken\n")
	assert.ErrorIs(t, f.g.Init(f.settings), ErrBackendInit)
	assert.False(t, f.g.Initialized())
}

func TestInit_OpensBackendFromSettings(t *testing.T) {
	f := newFixture(t)
	g := NewGraphics(nil, nil, nil)
	require.NoError(t, g.Init(f.settings))
	assert.Equal(t, 1, g.GetMaxAnisotropy())

	bad := NewGraphics(nil, nil, nil)
	f.settings.Backend = "vulkan"
	assert.ErrorIs(t, bad.Init(f.settings), ErrBackendInit)
	assert.Equal(t, 1, bad.GetMaxAnisotropy())
}

func TestInit_IntelWorkaround(t *testing.T) {
	prev := goos
	goos = "windows"
	defer func() { goos = prev }()

	f := newFixture(t)
	f.headless.SetCapabilities(backend.Capabilities{Vendor: "Intel", MaxAnisotropy: 8, ElementBufferWorkaround: true})
	f.init(t)
	assert.True(t, f.headless.ElementBufferWorkaround())
	assert.Equal(t, 8, f.g.GetMaxAnisotropy())

	other := newFixture(t)
	other.headless.SetCapabilities(backend.Capabilities{Vendor: "NVIDIA", ElementBufferWorkaround: true})
	other.init(t)
	assert.False(t, other.headless.ElementBufferWorkaround())
}

func TestInit_BindsPassTextures(t *testing.T) {
	f := newFixture(t)
	noise := filepath.Join(f.dir, "noise.png")
	require.NoError(t, os.WriteFile(noise, []byte("png"), 0o644))
	writePassList(t, f.dir, `
version: 1.0.0
passes:
  - name: ssao
    draw_groups: [full screen rect]
    textures:
      noiseTexture: noise.png
      lutTexture: missing.png
  - name: opaque
    draw_groups: [normal_noblend]
    fields:
      camera: default
`)
	f.init(t)

	ids := f.g.Pipeline().IDs()
	ssao, _ := ids.Lookup("ssao")
	opaque, _ := ids.Lookup("opaque")
	sampler, ok := ids.Lookup("noiseTexture")
	require.True(t, ok)

	tex, ok := f.g.Pipeline().Uniforms().LookupTexture(ssao, sampler)
	require.True(t, ok)
	assert.Equal(t, scene.Texture2D, tex.Target)
	want, err := f.headless.LoadTexture(noise, backend.TextureInfo{})
	require.NoError(t, err)
	assert.Equal(t, want, tex.Handle)

	_, ok = f.g.Pipeline().Uniforms().LookupTexture(opaque, sampler)
	assert.False(t, ok, "textures are scoped to the declaring pass")

	lut, _ := ids.Lookup("lutTexture")
	_, ok = f.g.Pipeline().Uniforms().LookupTexture(ssao, lut)
	assert.False(t, ok)
	assert.Contains(t, f.log.String(), "pass ssao: texture lutTexture")
}

func TestFrame_SharedCameraAssembledOnce(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	static := scene.NewNode()
	static.Drawables().Insert("normal_noblend", scene.NewModel(mgl32.Vec3{0, 0, -20}, 1, 1, 36))
	static.Drawables().Insert("normal_noblend", scene.NewModel(mgl32.Vec3{0, 0, 50}, 1, 2, 36))
	f.g.AddStaticNode(static)

	f.setup()
	stats := f.g.Stats()
	// shadow1/normal_noblend, default/normal_noblend, none/full screen rect
	assert.Equal(t, 3, stats.Assemblies)
	assert.Equal(t, 1, stats.CacheHits)

	opaque := f.list("opaque", "normal_noblend")
	require.NotNil(t, opaque)
	assert.Same(t, opaque, f.list("depth", "normal_noblend"))
	require.Equal(t, 1, opaque.Len())
	assert.Equal(t, uint32(1), opaque.Records[0].VertexArray)

	rect := f.list("bloom", scene.FullScreenRectGroup)
	require.NotNil(t, rect)
	assert.Equal(t, 1, rect.Len())

	require.NoError(t, f.g.DrawScene())
	assert.Equal(t, 1, f.headless.Frames)
	assert.Zero(t, f.headless.LoggedFrames, "first init does not log a frame")
}

func TestSetupScene_CamerasAndUniforms(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.setup()

	cams := f.g.Cameras()
	assert.Equal(t, 5, cams.Len())
	for _, name := range []string{CameraDefault, CameraSkybox, "shadow1", "shadow2", "shadow3"} {
		_, ok := cams.Get(name)
		assert.True(t, ok, name)
	}
	sky, _ := cams.Get(CameraSkybox)
	assert.InDelta(t, 2, sky.Position().Z(), 1e-4, "fixed skybox follows camera height")

	f.g.SetFixedSkybox(false)
	f.setup()
	sky, _ = cams.Get(CameraSkybox)
	assert.InDelta(t, 0, sky.Position().Len(), 1e-4)

	ids := f.g.Pipeline().IDs()
	u := f.g.Pipeline().Uniforms()
	opaque, _ := ids.Lookup("opaque")
	depth, _ := ids.Lookup("depth")
	shadowID, _ := ids.Lookup(core.ShadowMatrixField)

	m, ok := u.Pass(opaque, shadowID)
	require.True(t, ok)
	def, _ := cams.Get(CameraDefault)
	shadow1, _ := cams.Get("shadow1")
	want := core.ShadowReconstruction(def.InverseView, shadow1)
	assert.Equal(t, want[:], m.Data)
	_, ok = u.Pass(depth, shadowID)
	assert.False(t, ok)

	ambient, _ := ids.Lookup(pipeline.UniformAmbientLightColor)
	a, ok := u.Global(ambient)
	require.True(t, ok)
	assert.Equal(t, []float32{1.56, 1.56, 1.56, 1}, a.Data)

	f.g.SetLighting(core.Lighting{Ambient: mgl32.Vec4{1, 2, 3, 1}})
	f.setup()
	a, _ = u.Global(ambient)
	assert.Equal(t, []float32{1, 2, 3, 1}, a.Data)
}

func TestSetupScene_SunParallelToUpStaysFinite(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.g.SetSunDirection(mgl32.Vec3{0, 0, 1})
	f.g.SetCloseShadow(5)
	f.setup()

	for i, c := range f.g.ShadowCascades() {
		assert.Equal(t, mgl32.QuatIdent(), c.Rotation)
		cam, ok := f.g.Cameras().Get(core.ShadowCameraName(i))
		require.True(t, ok)
		for _, v := range cam.View {
			assert.False(t, math32.IsNaN(v))
		}
	}
	assert.Equal(t, float32(60), f.g.ShadowCascades()[0].Radius)
	assert.Equal(t, float32(5), f.g.ShadowCascades()[2].Radius)
}

func TestReload_FailureKeepsPreviousState(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	before := f.g.PassInfos()
	table := f.g.Pipeline().Passes()
	uniforms := f.g.Pipeline().Uniforms()

	writePassList(t, f.dir, "passes: [")
	assert.ErrorIs(t, f.g.ReloadShaders(), passes.ErrPassListLoad)

	writePassList(t, f.dir, "passes:\n  - name: nogroups\n")
	assert.ErrorIs(t, f.g.ReloadShaders(), ErrBackendInit)

	assert.Equal(t, before, f.g.PassInfos())
	assert.Same(t, table, f.g.Pipeline().Passes())
	assert.Same(t, uniforms, f.g.Pipeline().Uniforms())
	f.setup()
	assert.NotNil(t, f.list("opaque", "normal_noblend"))
}

func TestReload_SuccessLogsNextFrame(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	writePassList(t, f.dir, "passes:\n  - name: opaque\n    draw_groups: [normal_noblend]\n    fields: {camera: default}\n")
	require.NoError(t, f.g.ReloadShaders())
	assert.Equal(t, []string{"opaque"}, passNames(f.g.PassInfos()))

	f.setup()
	require.NoError(t, f.g.DrawScene())
	require.NoError(t, f.g.DrawScene())
	assert.Equal(t, 1, f.headless.LoggedFrames)
	assert.Contains(t, f.log.String(), "pass opaque: enabled=true camera=default groups=1")
}

func TestReloadIfChanged(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	w, err := WatchShaders(f.dir, nil)
	require.NoError(t, err)
	defer w.Close()

	reloaded, err := f.g.ReloadIfChanged(w)
	assert.False(t, reloaded)
	assert.NoError(t, err)

	w.pending.Store(true)
	reloaded, err = f.g.ReloadIfChanged(w)
	assert.True(t, reloaded)
	assert.NoError(t, err)

	reloaded, _ = f.g.ReloadIfChanged(nil)
	assert.False(t, reloaded)
}

func TestDynamicNodes(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	car := scene.NewNode()
	car.Transform.Position = mgl32.Vec3{0, 0, -10}
	car.Drawables().Insert("normal_noblend", scene.NewModel(mgl32.Vec3{}, 1, 9, 36))
	f.g.AddDynamicNode(car)
	f.setup()
	require.Equal(t, 1, f.list("opaque", "normal_noblend").Len())

	f.g.ClearDynamicDrawables()
	f.setup()
	assert.Equal(t, 0, f.list("opaque", "normal_noblend").Len())

	require.NoError(t, f.g.BindDynamicVertexData([]*scene.Node{car}))
	assert.Equal(t, 2, f.headless.DynamicDrawables, "the full-screen quad is appended")
	require.NoError(t, f.g.BindStaticVertexData([]*scene.Node{car}))
	assert.Equal(t, 1, f.headless.StaticDrawables)

	f.g.AddStaticNode(car)
	f.setup()
	require.Equal(t, 1, f.list("opaque", "normal_noblend").Len())
	f.g.ClearStaticDrawables()
	f.setup()
	assert.Equal(t, 0, f.list("opaque", "normal_noblend").Len())
}

func TestDeinit(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	f.g.Deinit()
	assert.False(t, f.g.Initialized())
	assert.False(t, f.headless.Initialized())
	assert.ErrorIs(t, f.g.DrawScene(), ErrNotInitialized)
	assert.True(t, f.g.AntialiasingSupported())
	assert.True(t, f.g.GetShadows())
	f.g.SetContrast(2)
}

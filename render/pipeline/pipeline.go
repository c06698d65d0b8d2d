package pipeline

import (
	"github.com/gekko3d/drift/logging"
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawMap maps pass -> draw group -> visible items. The lists belong to the
// pipeline's cache; the map is rebuilt every frame.
type DrawMap map[strid.ID]map[strid.ID]*RecordList

// Get returns the list a pass draws for a group, or nil.
func (m DrawMap) Get(pass, group strid.ID) *RecordList {
	return m[pass][group]
}

// FrameStats describes the last AssembleDrawMap call.
type FrameStats struct {
	Assemblies int
	CacheHits  int
	Visible    int
	Culled     int
}

// Pipeline owns the per-frame state: pass table, uniforms, scene lists,
// the (camera, group) cache and the draw map.
type Pipeline struct {
	ids *strid.Map
	log logging.Logger

	passes    *PassTable
	uniforms  *Uniforms
	assembler *Assembler
	cache     *Cache
	drawMap   DrawMap

	eye     mgl32.Vec3
	height  float32
	cullOpt core.CullOptions
	culler  core.Culler

	viewMatrixID       strid.ID
	projectionMatrixID strid.ID

	stats    FrameStats
	profiler *Profiler
}

func New(ids *strid.Map, log logging.Logger) *Pipeline {
	return &Pipeline{
		ids:                ids,
		log:                logging.Component(log, "pipeline"),
		passes:             &PassTable{byID: map[strid.ID]*Pass{}},
		uniforms:           NewUniforms(),
		assembler:          NewAssembler(scene.NewDrawableAttributes(ids)),
		cache:              NewCache(),
		drawMap:            make(DrawMap),
		cullOpt:            core.DefaultCullOptions(),
		viewMatrixID:       ids.Add(UniformViewMatrix),
		projectionMatrixID: ids.Add(UniformProjectionMatrix),
		profiler:           NewProfiler(),
	}
}

// Configure swaps in a new pass table and uniform store and drops cached
// lists that may refer to groups the new table no longer has.
func (p *Pipeline) Configure(table *PassTable, uniforms *Uniforms) {
	if uniforms == nil {
		uniforms = NewUniforms()
	}
	p.passes = table
	p.uniforms = uniforms
	p.cache.Reset()
	clear(p.drawMap)
}

func (p *Pipeline) IDs() *strid.Map                       { return p.ids }
func (p *Pipeline) Passes() *PassTable                    { return p.passes }
func (p *Pipeline) Uniforms() *Uniforms                   { return p.uniforms }
func (p *Pipeline) Dynamic() *scene.DrawList              { return p.assembler.Dynamic }
func (p *Pipeline) Static() *scene.StaticIndex            { return p.assembler.Static }
func (p *Pipeline) Attributes() *scene.DrawableAttributes { return &p.assembler.Attributes }
func (p *Pipeline) DrawMap() DrawMap                      { return p.drawMap }
func (p *Pipeline) FullScreenQuad() *scene.Drawable       { return p.assembler.FullScreenQuad }
func (p *Pipeline) Stats() FrameStats                     { return p.stats }
func (p *Pipeline) Profiler() *Profiler                   { return p.profiler }

// SetEye sets the player camera position used for contribution culling by
// every pass, shadow passes included.
func (p *Pipeline) SetEye(pos mgl32.Vec3) {
	p.eye = pos
}

// SetViewportHeight sets the render height the contribution threshold is
// computed for.
func (p *Pipeline) SetViewportHeight(h int) {
	p.height = float32(h)
}

func (p *Pipeline) SetCullOptions(opt core.CullOptions) {
	p.cullOpt = opt
}

// passCuller builds the culler for a pass from its bound camera uniforms.
// It returns nil, meaning no culling, for passes without a camera or
// without both matrices bound.
func (p *Pipeline) passCuller(pass *Pass) core.Predicate {
	if pass.Camera == strid.None {
		return nil
	}
	view, okView := p.uniforms.Pass(pass.ID, p.viewMatrixID)
	proj, okProj := p.uniforms.Pass(pass.ID, p.projectionMatrixID)
	if !okView || !okProj || len(view.Data) < 16 || len(proj.Data) < 16 {
		p.log.Debugf("pass %s: camera %s has no bound matrices, not culling", pass.Name, p.ids.String(pass.Camera))
		return nil
	}
	var v, pr mgl32.Mat4
	copy(v[:], view.Data)
	copy(pr[:], proj.Data)
	p.culler = core.Culler{
		Frustum:   core.ExtractFrustum(pr, v),
		Eye:       p.eye,
		Threshold: core.ContributionCullThreshold(p.height, p.cullOpt),
	}
	return &p.culler
}

// AssembleDrawMap rebuilds the draw map. Each (camera, group) pair is
// assembled once per call no matter how many enabled passes use it; every
// pass sharing the pair gets the same list.
func (p *Pipeline) AssembleDrawMap() DrawMap {
	p.profiler.BeginScope(ScopeAssemble)
	defer p.profiler.EndScope(ScopeAssemble)

	p.assembler.Dynamic.SortByDrawOrder(scene.TwoDimGroup)

	clear(p.drawMap)
	p.cache.BeginFrame()
	p.assembler.ResetCounts()
	p.stats = FrameStats{}

	for _, pass := range p.passes.Passes() {
		if !pass.Enabled {
			continue
		}
		groups := p.drawMap[pass.ID]
		if groups == nil {
			groups = make(map[strid.ID]*RecordList, len(pass.DrawGroups))
			p.drawMap[pass.ID] = groups
		}
		for _, group := range pass.DrawGroups {
			list, fresh := p.cache.Acquire(CacheKey{Camera: pass.Camera, Group: group})
			if fresh {
				list.Records = p.assembler.Assemble(p.ids.String(group), p.passCuller(pass), list.Records)
				p.stats.Assemblies++
			} else {
				p.stats.CacheHits++
			}
			groups[group] = list
		}
	}

	p.stats.Visible = p.assembler.Visible
	p.stats.Culled = p.assembler.Culled
	p.profiler.SetCount(CountAssemblies, p.stats.Assemblies)
	p.profiler.SetCount(CountCacheHits, p.stats.CacheHits)
	p.profiler.SetCount(CountVisible, p.stats.Visible)
	p.profiler.SetCount(CountCulled, p.stats.Culled)
	return p.drawMap
}

package pipeline

import (
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/scene"
	"github.com/gekko3d/drift/render/strid"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names shared with the shaders.
const (
	UniformViewMatrix              = "viewMatrix"
	UniformProjectionMatrix        = "projectionMatrix"
	UniformInvProjectionMatrix     = "invProjectionMatrix"
	UniformInvViewMatrix           = "invViewMatrix"
	UniformDefaultViewMatrix       = "defaultViewMatrix"
	UniformDefaultProjectionMatrix = "defaultProjectionMatrix"
	UniformEyespaceLightDirection  = "eyespaceLightDirection"
	UniformReflectedLightColor     = "reflectedLightColor"
	UniformAmbientLightColor       = "ambientLightColor"
	UniformDirectionalLightColor   = "directionalLightColor"
	UniformViewportSize            = "viewportSize"
	TextureReflectionCube          = "reflectionCube"
)

// PublishPassCameras binds the view and projection matrices of each pass's
// camera as pass uniforms. Passes whose camera is not in cams are skipped.
func (p *Pipeline) PublishPassCameras(cams *core.Cameras) {
	for _, pass := range p.passes.Passes() {
		if pass.Camera == strid.None {
			continue
		}
		m, ok := cams.Get(p.ids.String(pass.Camera))
		if !ok {
			p.log.Debugf("pass %s: camera %s not set up", pass.Name, p.ids.String(pass.Camera))
			continue
		}
		p.uniforms.SetPass(pass.ID, scene.Uniform{ID: p.viewMatrixID, Data: m.View[:]})
		p.uniforms.SetPass(pass.ID, scene.Uniform{ID: p.projectionMatrixID, Data: m.Projection[:]})
	}
}

// PublishShadowMatrix binds m to every pass whose shadowMatrix field equals
// suffix and returns how many passes received it.
func (p *Pipeline) PublishShadowMatrix(suffix string, m mgl32.Mat4) int {
	id := p.ids.Add(core.ShadowMatrixField)
	n := 0
	for _, pass := range p.passes.Passes() {
		if v, ok := pass.Fields[core.ShadowMatrixField]; ok && v == suffix {
			p.uniforms.SetPass(pass.ID, scene.Uniform{ID: id, Data: m[:]})
			n++
		}
	}
	return n
}

// PublishDefaultCamera binds the main camera matrices and the eyespace sun
// direction as globals.
func (p *Pipeline) PublishDefaultCamera(def *core.CameraMatrices, sunDirection mgl32.Vec3) {
	p.setGlobal(UniformInvProjectionMatrix, def.InverseProjection[:])
	p.setGlobal(UniformInvViewMatrix, def.InverseView[:])
	p.setGlobal(UniformDefaultViewMatrix, def.View[:])
	p.setGlobal(UniformDefaultProjectionMatrix, def.Projection[:])

	dir := core.EyespaceLightDirection(def.View, sunDirection)
	p.setGlobal(UniformEyespaceLightDirection, dir[:])
}

// PublishLighting binds the light colors as globals.
func (p *Pipeline) PublishLighting(l core.Lighting) {
	p.setGlobal(UniformReflectedLightColor, l.Reflected[:])
	p.setGlobal(UniformAmbientLightColor, l.Ambient[:])
	p.setGlobal(UniformDirectionalLightColor, l.Directional[:])
}

// PublishViewport binds the render target size as a global.
func (p *Pipeline) PublishViewport(width, height int) {
	p.SetViewportHeight(height)
	p.setGlobal(UniformViewportSize, []float32{float32(width), float32(height)})
}

// PublishReflectionCube binds a static reflection cubemap as a global
// texture.
func (p *Pipeline) PublishReflectionCube(handle uint32) {
	id := p.ids.Add(TextureReflectionCube)
	p.uniforms.SetGlobalTexture(scene.Texture{ID: id, Handle: handle, Target: scene.TextureCube})
}

func (p *Pipeline) setGlobal(name string, data []float32) {
	p.uniforms.SetGlobal(scene.Uniform{ID: p.ids.Add(name), Data: data})
}

package drift

import (
	"fmt"
	"os"

	"github.com/gekko3d/drift/render/backend"
	"github.com/gekko3d/drift/render/core"
	"github.com/gekko3d/drift/render/passes"
	"github.com/pelletier/go-toml/v2"
)

// Texture size levels for Settings.TextureSize.
const (
	TextureSizeSmall = iota
	TextureSizeMedium
	TextureSizeLarge
)

// Settings are the renderer options chosen by the player or the launcher.
type Settings struct {
	ShaderPath   string `toml:"shader_path"`
	RenderConfig string `toml:"render_config"`
	Backend      string `toml:"backend"`

	Width        int `toml:"width"`
	Height       int `toml:"height"`
	Antialiasing int `toml:"antialiasing"`

	Shadows        bool    `toml:"shadows"`
	ShadowDistance int     `toml:"shadow_distance"`
	ShadowQuality  int     `toml:"shadow_quality"`
	CloseShadow    float32 `toml:"close_shadow"`

	// ReflectionType is 0 (off), 1 (low) or 2 (high).
	ReflectionType      int    `toml:"reflection_type"`
	StaticReflectionMap string `toml:"static_reflection_map"`

	Anisotropy      int  `toml:"anisotropy"`
	TextureSize     int  `toml:"texture_size"`
	LightingQuality int  `toml:"lighting_quality"`
	Bloom           bool `toml:"bloom"`
	NormalMaps      bool `toml:"normal_maps"`
	DynamicSky      bool `toml:"dynamic_sky"`

	Lighting core.Lighting    `toml:"lighting"`
	Cull     core.CullOptions `toml:"cull"`

	Debug bool `toml:"debug"`
}

func DefaultSettings() Settings {
	return Settings{
		ShaderPath:   "data/shaders",
		RenderConfig: "passes.yaml",
		Backend:      string(backend.HeadlessName),
		Width:        1280,
		Height:       720,
		Antialiasing: 1,
		Shadows:      true,
		CloseShadow:  core.DefaultCloseShadow,
		Anisotropy:   1,
		TextureSize:  TextureSizeLarge,
		Bloom:        true,
		NormalMaps:   true,
		Lighting:     core.DefaultLighting(),
		Cull:         core.DefaultCullOptions(),
	}
}

// LoadSettings reads a TOML file over DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	s.normalize()
	return s, nil
}

func (s *Settings) normalize() {
	if s.Width <= 0 {
		s.Width = 1280
	}
	if s.Height <= 0 {
		s.Height = 720
	}
	if s.Antialiasing < 1 {
		s.Antialiasing = 1
	}
	if s.Anisotropy < 1 {
		s.Anisotropy = 1
	}
	if s.CloseShadow <= 0 {
		s.CloseShadow = core.DefaultCloseShadow
	}
	s.ReflectionType = max(0, min(s.ReflectionType, 2))
	s.TextureSize = max(TextureSizeSmall, min(s.TextureSize, TextureSizeLarge))
	if s.Backend == "" {
		s.Backend = string(backend.HeadlessName)
	}
}

// Conditions returns the feature tokens these settings enable.
func (s *Settings) Conditions() passes.ConditionSet {
	c := passes.NewConditionSet()
	if s.Bloom {
		c.Add("bloom")
	}
	if s.NormalMaps {
		c.Add("normalmaps")
	}
	if s.Antialiasing > 1 {
		c.Add("fsaa")
	}
	if s.Shadows {
		c.Add("shadows")
	}
	if s.ReflectionType >= 1 {
		c.Add("reflections_low")
	}
	if s.ReflectionType >= 2 {
		c.Add("reflections_high")
	}
	return c
}

// maxTextureSize maps a TextureSize level to a pixel limit; 0 is no limit.
func maxTextureSize(level int) int {
	switch level {
	case TextureSizeSmall:
		return 256
	case TextureSizeMedium:
		return 1024
	}
	return 0
}

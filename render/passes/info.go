package passes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrPassListLoad       = errors.New("passes: unable to load pass list")
	ErrUnsupportedVersion = errors.New("passes: unsupported pass list version")
)

// SupportedVersions is the range of pass list format versions Load accepts.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// DefaultVersion is assumed when a pass list does not declare one.
const DefaultVersion = "1.0.0"

// Well-known user-defined fields.
const (
	FieldConditions = "conditions"
	FieldCamera     = "camera"
)

// Info describes one render pass as written in the pass list.
type Info struct {
	Name    string `yaml:"name" toml:"name"`
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	DrawGroups     []string `yaml:"draw_groups" toml:"draw_groups"`
	VertexShader   string   `yaml:"vertex_shader,omitempty" toml:"vertex_shader,omitempty"`
	FragmentShader string   `yaml:"fragment_shader,omitempty" toml:"fragment_shader,omitempty"`

	// Fields are free-form strings read by the application, such as
	// "camera", "conditions" and "shadowMatrix".
	Fields   map[string]string    `yaml:"fields,omitempty" toml:"fields,omitempty"`
	Uniforms map[string][]float32 `yaml:"uniforms,omitempty" toml:"uniforms,omitempty"`
	Textures map[string]string    `yaml:"textures,omitempty" toml:"textures,omitempty"`
}

// IsEnabled reports the enabled flag; an omitted flag means enabled.
func (i *Info) IsEnabled() bool {
	return i.Enabled == nil || *i.Enabled
}

// Field returns a user-defined field.
func (i *Info) Field(key string) (string, bool) {
	v, ok := i.Fields[key]
	return v, ok
}

// List is the top level of a pass list file.
type List struct {
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`
	Passes  []Info `yaml:"passes" toml:"passes"`
}

// Format selects the pass list encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: unknown format of %q", ErrPassListLoad, path)
}

// Load reads and validates a pass list file.
func Load(path string) (*List, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPassListLoad, err)
	}
	list, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Decode parses and validates a pass list.
func Decode(data []byte, format Format) (*List, error) {
	var list List
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &list)
	case FormatTOML:
		err = toml.Unmarshal(data, &list)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrPassListLoad, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPassListLoad, err)
	}
	if err := checkVersion(list.Version); err != nil {
		return nil, err
	}
	if list.Version == "" {
		list.Version = DefaultVersion
	}
	if err := list.validate(); err != nil {
		return nil, err
	}
	return &list, nil
}

func checkVersion(v string) error {
	if v == "" {
		v = DefaultVersion
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, v, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(version) {
		return fmt.Errorf("%w: %s not in %s", ErrUnsupportedVersion, version, SupportedVersions)
	}
	return nil
}

func (l *List) validate() error {
	seen := make(map[string]bool, len(l.Passes))
	for n, p := range l.Passes {
		if p.Name == "" {
			return fmt.Errorf("%w: pass %d has no name", ErrPassListLoad, n)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate pass %q", ErrPassListLoad, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Clone deep-copies pass infos so the copy shares no maps or slices with
// the source.
func Clone(infos []Info) []Info {
	if infos == nil {
		return nil
	}
	out := make([]Info, 0, len(infos))
	if err := copier.CopyWithOption(&out, &infos, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types
		panic(err)
	}
	return out
}

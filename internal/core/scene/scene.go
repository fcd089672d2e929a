// Package scene describes simulations as YAML documents and builds the
// bodies they declare.
package scene

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/physim/internal/core/systems/physics"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
)

//go:embed scenes/*.yaml
var builtin embed.FS

// DefaultName is the scene used when none is configured.
const DefaultName = "drop"

// Scene is a complete simulation: engine overrides and the bodies, in the
// order they are added to the engine.
type Scene struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Engine      Overrides `yaml:"engine,omitempty"`
	Bodies      []Body    `yaml:"bodies"`
}

// Overrides replace engine settings that the scene sets explicitly.
type Overrides struct {
	Restitution *float64 `yaml:"restitution,omitempty"`
	TickLength  *float64 `yaml:"tick_length,omitempty"`
	TimeRatio   *float64 `yaml:"time_ratio,omitempty"`
}

// Apply returns cfg with the set overrides applied. An explicit zero is
// applied too, so a scene can ask for perfectly inelastic contacts.
func (o Overrides) Apply(cfg engine.Config) engine.Config {
	if o.Restitution != nil {
		cfg.Restitution = *o.Restitution
	}
	if o.TickLength != nil {
		cfg.TickLength = *o.TickLength
	}
	if o.TimeRatio != nil {
		cfg.TimeRatio = *o.TimeRatio
	}
	return cfg
}

type Body struct {
	Name       string       `yaml:"name"`
	Position   physics.Vec2 `yaml:"position"`
	Velocity   physics.Vec2 `yaml:"velocity,omitempty"`
	Mass       float64      `yaml:"mass,omitempty"`
	Collidable bool         `yaml:"collidable"`
	Simulated  bool         `yaml:"simulated"`

	Components []Component `yaml:"components"`
	Effects    []Effect    `yaml:"effects,omitempty"`
}

// Component is a collision shape or plane. Type selects which fields apply:
//
//	circle     center, radius
//	line       start, end
//	polygon    points
//	rectangle  top_left, size
//	square     top_left, side
//	plane      normal, position
//
// Shape coordinates are relative to the body position; plane coordinates are
// in world space.
type Component struct {
	Type string `yaml:"type"`

	Center physics.Vec2 `yaml:"center,omitempty"`
	Radius float64      `yaml:"radius,omitempty"`

	Start physics.Vec2 `yaml:"start,omitempty"`
	End   physics.Vec2 `yaml:"end,omitempty"`

	Points []physics.Vec2 `yaml:"points,omitempty"`

	TopLeft physics.Vec2 `yaml:"top_left,omitempty"`
	Size    physics.Vec2 `yaml:"size,omitempty"`
	Side    float64      `yaml:"side,omitempty"`

	Normal   physics.Vec2 `yaml:"normal,omitempty"`
	Position physics.Vec2 `yaml:"position,omitempty"`
}

// Effect is a global force. Type is gravity (gs) or drag (air_density,
// drag_coefficient and an optional area).
type Effect struct {
	Type string `yaml:"type"`

	Gs float64 `yaml:"gs,omitempty"`

	AirDensity      float64 `yaml:"air_density,omitempty"`
	DragCoefficient float64 `yaml:"drag_coefficient,omitempty"`
	Area            float64 `yaml:"area,omitempty"`
}

// LoadYAML decodes and validates a scene.
func LoadYAML(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile loads a scene from disk.
func LoadFile(name string) (*Scene, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	return s, nil
}

// Builtin loads one of the scenes shipped with the binary.
func Builtin(name string) (*Scene, error) {
	f, err := builtin.Open(path.Join("scenes", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownScene, name, strings.Join(BuiltinNames(), ", "))
	}
	defer f.Close()
	return LoadYAML(f)
}

// Default is the drop scene: a ball falling onto the ground.
func Default() *Scene {
	s, err := Builtin(DefaultName)
	if err != nil {
		panic(err)
	}
	return s
}

// BuiltinNames lists the shipped scenes in lexical order.
func BuiltinNames() []string {
	entries, _ := fs.ReadDir(builtin, "scenes")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// Load resolves ref as a builtin scene name or else a file path.
func Load(ref string) (*Scene, error) {
	if ref == "" {
		ref = DefaultName
	}
	if slices.Contains(BuiltinNames(), ref) {
		return Builtin(ref)
	}
	return LoadFile(ref)
}

package scene

import (
	"fmt"

	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/core/systems/physics/shapes"
)

// Validate checks the whole scene without keeping the built bodies.
func (s *Scene) Validate() error {
	_, err := s.Build()
	return err
}

// Build creates fresh bodies for the scene, in declaration order. Each call
// returns new bodies with new IDs.
func (s *Scene) Build() ([]*models.Body, error) {
	if len(s.Bodies) == 0 {
		return nil, ErrNoBodies
	}
	if err := s.Engine.Apply(engine.DefaultConfig()).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEngine, err)
	}

	seen := make(map[string]struct{}, len(s.Bodies))
	bodies := make([]*models.Body, 0, len(s.Bodies))
	for i, spec := range s.Bodies {
		if spec.Name != "" {
			if _, dup := seen[spec.Name]; dup {
				return nil, fmt.Errorf("body %d: %w: %q", i, ErrDuplicateName, spec.Name)
			}
			seen[spec.Name] = struct{}{}
		}
		b, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, spec.Name, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// EngineConfig applies the scene overrides on top of cfg.
func (s *Scene) EngineConfig(cfg engine.Config) engine.Config {
	return s.Engine.Apply(cfg)
}

func (b Body) build() (*models.Body, error) {
	cfg := models.BodyConfig{
		Name:       b.Name,
		Position:   b.Position,
		Velocity:   b.Velocity,
		Mass:       b.Mass,
		Collidable: b.Collidable,
		Simulated:  b.Simulated,
	}
	for i, c := range b.Components {
		component, err := c.build()
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		cfg.Components = append(cfg.Components, component)
	}
	for i, e := range b.Effects {
		effect, err := e.build()
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		cfg.Effects = append(cfg.Effects, effect)
	}

	body := models.NewBody(cfg)
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return body, nil
}

func (c Component) build() (models.CollisionComponent, error) {
	if c.Type == "plane" {
		if c.Normal.IsZero() {
			return nil, fmt.Errorf("%w: plane normal is zero", ErrInvalidShape)
		}
		return models.NewCollisionPlane(c.Normal, c.Position), nil
	}
	shape, err := c.shape()
	if err != nil {
		return nil, err
	}
	return models.NewCollisionShape(shape), nil
}

func (c Component) shape() (shapes.Shape, error) {
	switch c.Type {
	case "circle":
		if !(c.Radius > 0) {
			return nil, fmt.Errorf("%w: circle radius %v", ErrInvalidShape, c.Radius)
		}
		return shapes.NewCircle(c.Center, c.Radius), nil
	case "line":
		if c.Start == c.End {
			return nil, fmt.Errorf("%w: line has zero length", ErrInvalidShape)
		}
		return shapes.NewLine(c.Start, c.End), nil
	case "rectangle":
		if !(c.Size.X > 0) || !(c.Size.Y > 0) {
			return nil, fmt.Errorf("%w: rectangle size %v", ErrInvalidShape, c.Size)
		}
		return shapes.NewRectangle(c.TopLeft, c.Size), nil
	case "square":
		if !(c.Side > 0) {
			return nil, fmt.Errorf("%w: square side %v", ErrInvalidShape, c.Side)
		}
		return shapes.NewSquare(c.TopLeft, c.Side), nil
	case "polygon":
		p := shapes.NewPolygon(c.Points...)
		if !p.IsConvex() {
			return nil, fmt.Errorf("%w: %v", ErrNonConvex, c.Points)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: component %q", ErrUnknownType, c.Type)
	}
}

func (e Effect) build() (models.GlobalEffect, error) {
	switch e.Type {
	case "gravity":
		return models.Gravity{Gs: e.Gs}, nil
	case "drag":
		if e.AirDensity < 0 || e.DragCoefficient < 0 || e.Area < 0 {
			return nil, fmt.Errorf("%w: drag coefficients must not be negative", ErrInvalidEffect)
		}
		return models.Drag{AirDensity: e.AirDensity, DragCoefficient: e.DragCoefficient, Area: e.Area}, nil
	default:
		return nil, fmt.Errorf("%w: effect %q", ErrUnknownType, e.Type)
	}
}

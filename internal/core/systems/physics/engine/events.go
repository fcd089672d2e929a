package engine

import (
	"github.com/zeusync/physim/internal/core/models"
	"github.com/zeusync/physim/internal/core/systems/physics"
)

// EventCollision is published once per resolved contact with a
// CollisionEvent payload.
const EventCollision = "physics.collision"

// CollisionEvent describes a resolved contact. Body is the body that was
// corrected; Other is the body it hit.
type CollisionEvent struct {
	Tick      uint64        `json:"tick"`
	Body      models.BodyID `json:"body"`
	BodyName  string        `json:"bodyName,omitempty"`
	Other     models.BodyID `json:"other"`
	OtherName string        `json:"otherName,omitempty"`
	Plane     bool          `json:"plane"`
	Position  physics.Vec2  `json:"position"`
	Normal    physics.Vec2  `json:"normal"`
	Force     physics.Vec2  `json:"force"`
	Speed     float64       `json:"speed"` // approach speed along the normal
}

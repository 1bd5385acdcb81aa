package scene

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/farmplot/internal/entity"
	"github.com/samdwyer/farmplot/internal/gamedata"
	"github.com/samdwyer/farmplot/internal/telemetry"
)

// Populate spawns every placement in layout. It stops at the first prefab that
// cannot be spawned.
func (s *Scene) Populate(ctx context.Context, layout gamedata.LayoutDef) error {
	_, span := telemetry.Tracer("scene").Start(ctx, "scene.populate")
	defer span.End()

	for i, p := range layout.Entities {
		pose := entity.NewPose(mgl64.Vec3{p.Position[0], p.Position[1], p.Position[2]}, p.Yaw)
		if _, err := s.Spawn(p.Prefab, pose); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "spawn failed")
			return fmt.Errorf("layout entity %d: %w", i, err)
		}
	}

	span.SetAttributes(
		attribute.String("layout.name", layout.Name),
		attribute.Int("scene.entities", s.Len()),
	)
	return nil
}

package workspace

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
)

var ErrNotFound = errors.New("workspace not found")

// Repository stores workspaces.
type Repository interface {
	// Create inserts the workspace row together with its classes and points.
	Create(ctx context.Context, w *models.Workspace) error

	// Get loads a workspace with classes and points in order.
	Get(ctx context.Context, id string) (*models.Workspace, error)

	// Latest returns the most recently created workspace.
	Latest(ctx context.Context) (*models.Workspace, error)

	// UpdateSettings writes name, brush size and current class.
	UpdateSettings(ctx context.Context, w *models.Workspace) error

	// SaveClass inserts or renames the class at position.
	SaveClass(ctx context.Context, id string, position int, c models.Class) error

	AddPoint(ctx context.Context, id string, a models.Annotation) error

	// DeleteLastPoint removes the newest point. It reports false when there
	// was nothing to remove.
	DeleteLastPoint(ctx context.Context, id string) (bool, error)

	ClearPoints(ctx context.Context, id string) error
}

package models

// Workspace is the dataset being edited: the exported document plus the
// editor settings that are not part of the export.
type Workspace struct {
	ID           string
	Name         string
	Dimensions   Dimensions
	BrushSize    int
	CurrentClass string
	CreatedAt    string
	Classes      []Class
	Points       []Annotation
}

// NewWorkspace returns a workspace with the editor defaults.
func NewWorkspace(id, createdAt string) *Workspace {
	classes := DefaultClasses()
	return &Workspace{
		ID:           id,
		Name:         DefaultDatasetName,
		Dimensions:   Dimensions{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		BrushSize:    DefaultBrushSize,
		CurrentClass: classes[0].ID,
		CreatedAt:    createdAt,
		Classes:      classes,
	}
}

// Class looks a class up by id.
func (w *Workspace) Class(id string) (Class, bool) {
	for _, c := range w.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

// Dataset converts the workspace into its export document.
func (w *Workspace) Dataset() Dataset {
	return Dataset{
		Name:            w.Name,
		CreatedAt:       w.CreatedAt,
		ImageDimensions: w.Dimensions,
		Classes:         append([]Class(nil), w.Classes...),
		Annotations:     append([]Annotation(nil), w.Points...),
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mlplayground/internal/client/forms"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/services"
)

const (
	MsgInvalidJSON = "Invalid JSON file."
	MsgUploaded    = "Dataset uploaded successfully!"
	MsgNoUpload    = "Nothing uploaded yet. Use: import PATH"
)

var errUsage = errors.New("usage")

func (a *App) usage(text string) error {
	a.warn("Usage: " + text)
	return errUsage
}

// failed reports err to the user and returns it.
func (a *App) failed(ctx context.Context, op string, err error) error {
	a.logger.Debug(ctx, op+" failed", "error", err)
	switch {
	case errors.Is(err, services.ErrOutOfCanvas),
		errors.Is(err, services.ErrUnknownClass),
		errors.Is(err, services.ErrBrushSize):
		a.alert(err.Error())
	default:
		a.alert(fmt.Sprintf("Could not %s: %v", op, err))
	}
	return err
}

// Show prints the workspace summary: settings, classes with point counts and
// the most recent points.
func (a *App) Show(ctx context.Context) error {
	w, err := a.datasets.Current(ctx)
	if err != nil {
		return a.failed(ctx, "load workspace", err)
	}

	a.header(w.Name)
	a.printf("Canvas:  %dx%d\n", w.Dimensions.Width, w.Dimensions.Height)
	a.printf("Brush:   %d\n", w.BrushSize)
	a.printf("Created: %s\n", w.CreatedAt)

	counts := make(map[string]int, len(w.Classes))
	for _, p := range w.Points {
		counts[p.ClassID]++
	}

	a.header("Classes")
	for _, c := range w.Classes {
		marker := " "
		if c.ID == w.CurrentClass {
			marker = "*"
		}
		a.printf("%s %-10s %-20s %s  %d pts\n", marker, c.ID, c.Name, c.Color, counts[c.ID])
	}

	a.header(fmt.Sprintf("Points (%d)", len(w.Points)))
	const recent = 5
	start := max(0, len(w.Points)-recent)
	for _, p := range w.Points[start:] {
		a.printf("  (%g, %g) %s size=%d %s\n", p.X, p.Y, p.ClassID, p.Size, p.Timestamp)
	}
	return nil
}

func (a *App) Point(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("point X Y")
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	if errX != nil || errY != nil {
		return a.usage("point X Y (numbers)")
	}

	p, err := a.datasets.AddPoint(ctx, x, y)
	if err != nil {
		return a.failed(ctx, "add point", err)
	}
	a.printf("Added (%g, %g) as %s\n", p.X, p.Y, p.ClassID)
	return nil
}

func (a *App) Undo(ctx context.Context) error {
	removed, err := a.datasets.Undo(ctx)
	if err != nil {
		return a.failed(ctx, "undo", err)
	}
	if !removed {
		a.warn("Nothing to undo.")
		return nil
	}
	a.info("Last point removed.")
	return nil
}

func (a *App) ClearPoints(ctx context.Context) error {
	if err := a.datasets.Clear(ctx); err != nil {
		return a.failed(ctx, "clear points", err)
	}
	a.info("All points cleared.")
	return nil
}

// Class handles "class add", "class rename ID NAME" and "class select ID".
func (a *App) Class(ctx context.Context, args []string) error {
	const text = "class add | class rename ID NAME | class select ID"
	if len(args) == 0 {
		return a.usage(text)
	}

	switch args[0] {
	case "add":
		c, err := a.datasets.AddClass(ctx)
		if err != nil {
			return a.failed(ctx, "add class", err)
		}
		a.info(fmt.Sprintf("Added %s (%s), now selected.", c.Name, c.Color))
	case "rename":
		if len(args) < 3 {
			return a.usage(text)
		}
		if err := a.datasets.RenameClass(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
			return a.failed(ctx, "rename class", err)
		}
		a.info("Class renamed.")
	case "select":
		if len(args) != 2 {
			return a.usage(text)
		}
		if err := a.datasets.SelectClass(ctx, args[1]); err != nil {
			return a.failed(ctx, "select class", err)
		}
		a.info(fmt.Sprintf("Selected %s.", args[1]))
	default:
		return a.usage(text)
	}
	return nil
}

func (a *App) Brush(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage(fmt.Sprintf("brush N (%d-%d)", models.MinBrushSize, models.MaxBrushSize))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.usage(fmt.Sprintf("brush N (%d-%d)", models.MinBrushSize, models.MaxBrushSize))
	}
	if err := a.datasets.SetBrushSize(ctx, n); err != nil {
		return a.failed(ctx, "set brush size", err)
	}
	a.info(fmt.Sprintf("Brush size is %d.", n))
	return nil
}

func (a *App) Name(ctx context.Context, args []string) error {
	form := forms.DatasetName{Name: strings.TrimSpace(strings.Join(args, " "))}
	if err := form.Validate(); err != nil {
		a.validationFailed(err)
		return err
	}
	if err := a.datasets.SetName(ctx, form.Name); err != nil {
		return a.failed(ctx, "rename dataset", err)
	}
	a.info(fmt.Sprintf("Dataset is now %q.", form.Name))
	return nil
}

// New starts an empty workspace with default settings.
func (a *App) New(ctx context.Context) error {
	w, err := a.datasets.Reset(ctx)
	if err != nil {
		return a.failed(ctx, "start a new dataset", err)
	}
	a.info(fmt.Sprintf("Started %s.", w.Name))
	return nil
}

func (a *App) Export(ctx context.Context) error {
	var path string
	err := a.pending("Exporting...", func() error {
		var err error
		path, err = a.datasets.Export(ctx)
		return err
	})
	if err != nil {
		return a.failed(ctx, "export", err)
	}
	a.toast("Exported to " + path)
	return nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("import PATH")
	}

	up, err := a.datasets.Import(ctx, args[0])
	switch {
	case errors.Is(err, models.ErrInvalidJSON):
		a.alert(MsgInvalidJSON)
		return err
	case err != nil:
		return a.failed(ctx, "import", err)
	}

	a.toast(MsgUploaded)
	if d, err := up.AsDataset(); err == nil {
		a.printf("%s: %d classes, %d annotations\n", up.FileName, len(d.Classes), len(d.Annotations))
	}
	return nil
}

// Preview prints the last imported file as indented JSON.
func (a *App) Preview(ctx context.Context) error {
	up, err := a.datasets.Upload()
	if errors.Is(err, services.ErrNoUpload) {
		a.warn(MsgNoUpload)
		return err
	}
	if err != nil {
		return a.failed(ctx, "preview", err)
	}

	text, err := up.Preview()
	if err != nil {
		return a.failed(ctx, "preview", err)
	}
	a.header(up.FileName)
	a.printf("%s\n", text)
	return nil
}

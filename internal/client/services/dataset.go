package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/repositories/workspace"
	"github.com/dmitrijs2005/mlplayground/internal/dbx"
	"github.com/dmitrijs2005/mlplayground/internal/filex"
	"github.com/dmitrijs2005/mlplayground/internal/logging"
)

// MaxUploadSize caps the size of an imported file.
const MaxUploadSize = 32 << 20

var (
	ErrOutOfCanvas  = errors.New("point is outside the canvas")
	ErrUnknownClass = errors.New("unknown class")
	ErrBrushSize    = fmt.Errorf("brush size must be between %d and %d", models.MinBrushSize, models.MaxBrushSize)
	ErrInvalidName  = errors.New("invalid dataset name")
	ErrNoUpload     = errors.New("nothing uploaded yet")
)

// DatasetService edits the annotation workspace and moves datasets in and
// out of JSON files.
type DatasetService interface {
	// Current returns the open workspace, creating one on first use.
	Current(ctx context.Context) (*models.Workspace, error)
	// Reset discards the open workspace and starts a fresh one.
	Reset(ctx context.Context) (*models.Workspace, error)

	AddPoint(ctx context.Context, x, y float64) (models.Annotation, error)
	Undo(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error

	AddClass(ctx context.Context) (models.Class, error)
	RenameClass(ctx context.Context, id, name string) error
	SelectClass(ctx context.Context, id string) error
	SetBrushSize(ctx context.Context, size int) error
	SetName(ctx context.Context, name string) error

	// Export writes the workspace to <dir>/<name>.json and returns the path.
	Export(ctx context.Context) (string, error)

	// Import reads and parses a JSON file. On success it replaces the current
	// upload; on failure the previous upload is kept.
	Import(ctx context.Context, path string) (*models.Upload, error)
	// Upload returns the last successful import.
	Upload() (*models.Upload, error)
}

type datasetService struct {
	db        *sql.DB
	exportDir string
	logger    logging.Logger

	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	id     string
	upload *models.Upload
}

// NewDatasetService binds the service to the workspace database and the
// export directory.
func NewDatasetService(db *sql.DB, exportDir string, logger logging.Logger) DatasetService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &datasetService{
		db:        db,
		exportDir: exportDir,
		logger:    logger.With("component", "dataset"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// edit loads the open workspace inside a transaction and hands it to fn
// together with a repository bound to that transaction.
func (s *datasetService) edit(ctx context.Context, fn func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := workspace.NewSQLiteRepository(tx)
		w, err := s.open(ctx, repo)
		if err != nil {
			return err
		}
		return fn(ctx, repo, w)
	})
}

// open returns the workspace tracked by s.id, falling back to the latest
// stored one and finally to a new workspace. Callers hold s.mu.
func (s *datasetService) open(ctx context.Context, repo workspace.Repository) (*models.Workspace, error) {
	if s.id != "" {
		w, err := repo.Get(ctx, s.id)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, workspace.ErrNotFound) {
			return nil, err
		}
	}

	w, err := repo.Latest(ctx)
	if err == nil {
		s.id = w.ID
		return w, nil
	}
	if !errors.Is(err, workspace.ErrNotFound) {
		return nil, err
	}
	return s.create(ctx, repo)
}

func (s *datasetService) create(ctx context.Context, repo workspace.Repository) (*models.Workspace, error) {
	w := models.NewWorkspace(s.newID(), models.FormatTimestamp(s.now()))
	if err := repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create workspace error: %w", err)
	}
	s.id = w.ID
	s.logger.Debug(ctx, "workspace created", "id", w.ID)
	return w, nil
}

func (s *datasetService) Current(ctx context.Context) (*models.Workspace, error) {
	var out *models.Workspace
	err := s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		out = w
		return nil
	})
	return out, err
}

func (s *datasetService) Reset(ctx context.Context) (*models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Workspace, error) {
		return s.create(ctx, workspace.NewSQLiteRepository(tx))
	})
}

func (s *datasetService) AddPoint(ctx context.Context, x, y float64) (models.Annotation, error) {
	var a models.Annotation
	err := s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		if !w.Dimensions.Contains(x, y) {
			return fmt.Errorf("%w: (%g, %g) not within %dx%d", ErrOutOfCanvas, x, y, w.Dimensions.Width, w.Dimensions.Height)
		}
		a = models.Annotation{
			X:         x,
			Y:         y,
			ClassID:   w.CurrentClass,
			Size:      w.BrushSize,
			Timestamp: models.FormatTimestamp(s.now()),
		}
		return repo.AddPoint(ctx, w.ID, a)
	})
	if err != nil {
		return models.Annotation{}, err
	}
	return a, nil
}

func (s *datasetService) Undo(ctx context.Context) (bool, error) {
	var removed bool
	err := s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		var err error
		removed, err = repo.DeleteLastPoint(ctx, w.ID)
		return err
	})
	return removed, err
}

func (s *datasetService) Clear(ctx context.Context) error {
	return s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		return repo.ClearPoints(ctx, w.ID)
	})
}

// AddClass appends the next palette class and makes it current.
func (s *datasetService) AddClass(ctx context.Context) (models.Class, error) {
	var c models.Class
	err := s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		n := len(w.Classes)
		c = models.NewClass(n)
		if err := repo.SaveClass(ctx, w.ID, n, c); err != nil {
			return err
		}
		w.CurrentClass = c.ID
		return repo.UpdateSettings(ctx, w)
	})
	if err != nil {
		return models.Class{}, err
	}
	return c, nil
}

func (s *datasetService) RenameClass(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	return s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		for i, c := range w.Classes {
			if c.ID == id {
				c.Name = name
				return repo.SaveClass(ctx, w.ID, i, c)
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownClass, id)
	})
}

func (s *datasetService) SelectClass(ctx context.Context, id string) error {
	return s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		if _, ok := w.Class(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownClass, id)
		}
		w.CurrentClass = id
		return repo.UpdateSettings(ctx, w)
	})
}

func (s *datasetService) SetBrushSize(ctx context.Context, size int) error {
	if size < models.MinBrushSize || size > models.MaxBrushSize {
		return ErrBrushSize
	}
	return s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		w.BrushSize = size
		return repo.UpdateSettings(ctx, w)
	})
}

// SetName renames the dataset. The name doubles as the export file name, so
// path separators are rejected.
func (s *datasetService) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.edit(ctx, func(ctx context.Context, repo workspace.Repository, w *models.Workspace) error {
		w.Name = name
		return repo.UpdateSettings(ctx, w)
	})
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (s *datasetService) Export(ctx context.Context) (string, error) {
	w, err := s.Current(ctx)
	if err != nil {
		return "", err
	}

	b, err := w.Dataset().Encode()
	if err != nil {
		return "", fmt.Errorf("encode dataset error: %w", err)
	}

	dir, err := filex.EnsureDir(s.exportDir)
	if err != nil {
		return "", fmt.Errorf("export dir error: %w", err)
	}
	path := filepath.Join(dir, w.Name+".json")
	if err := filex.WriteFileAtomic(path, b, 0o644); err != nil {
		return "", fmt.Errorf("export error: %w", err)
	}

	s.logger.Info(ctx, "dataset exported", "path", path, "points", len(w.Points))
	return path, nil
}

func (s *datasetService) Import(ctx context.Context, path string) (*models.Upload, error) {
	b, err := filex.ReadLimited(path, MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("import error: %w", err)
	}

	up, err := models.ParseUpload(filepath.Base(path), b)
	if err != nil {
		s.logger.Debug(ctx, "upload rejected", "path", path, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.upload = up
	s.mu.Unlock()

	s.logger.Info(ctx, "dataset imported", "file", up.FileName)
	return up, nil
}

func (s *datasetService) Upload() (*models.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upload == nil {
		return nil, ErrNoUpload
	}
	return s.upload, nil
}

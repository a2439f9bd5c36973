package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, w *models.Workspace) error {
	query := `INSERT INTO datasets (id, name, width, height, brush_size, current_class, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.Name, w.Dimensions.Width, w.Dimensions.Height, w.BrushSize, w.CurrentClass, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	for i, c := range w.Classes {
		if err := r.SaveClass(ctx, w.ID, i, c); err != nil {
			return err
		}
	}
	for _, p := range w.Points {
		if err := r.AddPoint(ctx, w.ID, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Workspace, error) {
	query := `SELECT id, name, width, height, brush_size, current_class, created_at
			FROM datasets WHERE id=?`
	return r.load(ctx, r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) Latest(ctx context.Context) (*models.Workspace, error) {
	query := `SELECT id, name, width, height, brush_size, current_class, created_at
			FROM datasets ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return r.load(ctx, r.db.QueryRowContext(ctx, query))
}

func (r *SQLiteRepository) load(ctx context.Context, row *sql.Row) (*models.Workspace, error) {
	w := &models.Workspace{}
	err := row.Scan(&w.ID, &w.Name, &w.Dimensions.Width, &w.Dimensions.Height,
		&w.BrushSize, &w.CurrentClass, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	if w.Classes, err = r.classes(ctx, w.ID); err != nil {
		return nil, err
	}
	if w.Points, err = r.points(ctx, w.ID); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *SQLiteRepository) classes(ctx context.Context, id string) ([]models.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color FROM classes WHERE dataset_id=? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select classes: %w", err)
	}
	defer rows.Close()

	var result []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) points(ctx context.Context, id string) ([]models.Annotation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT x, y, class_id, size, created_at FROM points WHERE dataset_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select points: %w", err)
	}
	defer rows.Close()

	var result []models.Annotation
	for rows.Next() {
		var a models.Annotation
		if err := rows.Scan(&a.X, &a.Y, &a.ClassID, &a.Size, &a.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateSettings(ctx context.Context, w *models.Workspace) error {
	query := `UPDATE datasets SET name=?, brush_size=?, current_class=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query, w.Name, w.BrushSize, w.CurrentClass, w.ID)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SaveClass(ctx context.Context, id string, position int, c models.Class) error {
	query := `INSERT INTO classes (dataset_id, id, position, name, color)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(dataset_id, id) DO UPDATE SET name = excluded.name, color = excluded.color`
	if _, err := r.db.ExecContext(ctx, query, id, c.ID, position, c.Name, c.Color); err != nil {
		return fmt.Errorf("failed to upsert class: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddPoint(ctx context.Context, id string, a models.Annotation) error {
	query := `INSERT INTO points (dataset_id, x, y, class_id, size, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, a.X, a.Y, a.ClassID, a.Size, a.Timestamp); err != nil {
		return fmt.Errorf("failed to insert point: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteLastPoint(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM points WHERE seq = (SELECT MAX(seq) FROM points WHERE dataset_id=?)`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete point: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra == 1, nil
}

func (r *SQLiteRepository) ClearPoints(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM points WHERE dataset_id=?`, id); err != nil {
		return fmt.Errorf("failed to clear points: %w", err)
	}
	return nil
}

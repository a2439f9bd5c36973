// Package workspace persists the dataset being edited.
//
// # Overview
//
// A workspace is one row in datasets plus its classes (ordered by position)
// and its points (ordered by insertion sequence). SQLiteRepository works
// over a dbx.DBTX, so the same code runs against *sql.DB or inside a
// transaction opened with dbx.WithTx.
//
// Typical Usage
//
//	repo := workspace.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, models.NewWorkspace(id, ts))
//	_ = repo.AddPoint(ctx, id, a)
//	w, _ := repo.Get(ctx, id)
package workspace

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/repository/builder"
)

const outputFilesTable = "output_files"

var outputFileColumns = []string{
	"project", "batch", "file_id", "filename", "path",
	"encrypted_path", "split_by", "split_value", "created_at",
}

// OutputFileRepository stores the ledger in Postgres or sqlite.
type OutputFileRepository struct {
	db *sql.DB
}

// NewOutputFileRepository creates a new instance of OutputFileRepository
func NewOutputFileRepository(db *sql.DB) *OutputFileRepository {
	return &OutputFileRepository{db: db}
}

var _ domain.OutputFileRepository = (*OutputFileRepository)(nil)

// Save inserts a ledger entry. A second entry for the same project and
// filename is ignored.
func (r *OutputFileRepository) Save(ctx context.Context, f *domain.OutputFile) error {
	query, args, err := builder.NewSQLBuilder().
		Insert(outputFilesTable, outputFileColumns...).
		Values(f.Project, f.Batch, f.FileID, f.Filename, f.Path,
			f.EncryptedPath, f.SplitBy, f.SplitValue, f.CreatedAt.UTC()).
		OnConflictDoNothing("project", "filename").
		BuildSafe()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save output file %s: %w", f.Key(), err)
	}
	return nil
}

// BatchSave inserts several entries in one transaction.
func (r *OutputFileRepository) BatchSave(ctx context.Context, files []domain.OutputFile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range files {
		f := &files[i]
		query, args := builder.NewSQLBuilder().
			Insert(outputFilesTable, outputFileColumns...).
			Values(f.Project, f.Batch, f.FileID, f.Filename, f.Path,
				f.EncryptedPath, f.SplitBy, f.SplitValue, f.CreatedAt.UTC()).
			OnConflictDoNothing("project", "filename").
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert output file %s: %w", f.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByProject retrieves a page of the entries of a project ordered by file
// ID.
func (r *OutputFileRepository) ListByProject(ctx context.Context, project string, page domain.Page) ([]domain.OutputFile, error) {
	b := builder.NewSQLBuilder().
		Select(append([]string{"id"}, outputFileColumns...)...).
		From(outputFilesTable).
		Where("project = ?", project).
		OrderBy("file_id")
	// sqlite rejects OFFSET without LIMIT.
	if page.Limit > 0 {
		b.Limit(page.Limit).Offset(page.Offset)
	}
	query, args := b.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query output files: %w", err)
	}
	defer rows.Close()

	var files []domain.OutputFile
	for rows.Next() {
		var f domain.OutputFile
		if err := rows.Scan(&f.ID, &f.Project, &f.Batch, &f.FileID, &f.Filename, &f.Path,
			&f.EncryptedPath, &f.SplitBy, &f.SplitValue, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan output file: %w", err)
		}
		files = append(files, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return files, nil
}

// Count returns the number of entries of a project.
func (r *OutputFileRepository) Count(ctx context.Context, project string) (int64, error) {
	query, args := builder.NewSQLBuilder().
		Select("COUNT(*)").
		From(outputFilesTable).
		Where("project = ?", project).
		Build()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count output files: %w", err)
	}
	return count, nil
}

// DeleteProject removes every entry of a project.
func (r *OutputFileRepository) DeleteProject(ctx context.Context, project string) (int64, error) {
	query, args := builder.NewSQLBuilder().
		Delete(outputFilesTable).
		Where("project = ?", project).
		Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete output files: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

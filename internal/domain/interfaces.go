package domain

import "context"

// Page selects a window of ledger entries. A Limit of zero or less returns
// every entry and ignores Offset.
type Page struct {
	Limit  int
	Offset int
}

// OutputFileRepository persists the ledger of generated workbooks.
type OutputFileRepository interface {
	Save(ctx context.Context, f *OutputFile) error
	BatchSave(ctx context.Context, files []OutputFile) error
	ListByProject(ctx context.Context, project string, page Page) ([]OutputFile, error)
	Count(ctx context.Context, project string) (int64, error)
	DeleteProject(ctx context.Context, project string) (int64, error)
}

package service

import (
	"context"

	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/pkg/xlbatch"
)

// LedgerRecorder stores every generated workbook in a ledger repository.
type LedgerRecorder struct {
	repo domain.OutputFileRepository
}

func NewLedgerRecorder(repo domain.OutputFileRepository) *LedgerRecorder {
	return &LedgerRecorder{repo: repo}
}

var _ xlbatch.BatchRecorder = (*LedgerRecorder)(nil)

func (r *LedgerRecorder) Record(ctx context.Context, rec xlbatch.OutputFileRecord) error {
	f := toOutputFile(rec)
	return r.repo.Save(ctx, &f)
}

// RecordAll stores the records of one run with a single backend call. A
// single-file run is a plain Save.
func (r *LedgerRecorder) RecordAll(ctx context.Context, recs []xlbatch.OutputFileRecord) error {
	if len(recs) == 1 {
		return r.Record(ctx, recs[0])
	}
	files := make([]domain.OutputFile, len(recs))
	for i, rec := range recs {
		files[i] = toOutputFile(rec)
	}
	return r.repo.BatchSave(ctx, files)
}

func toOutputFile(rec xlbatch.OutputFileRecord) domain.OutputFile {
	return domain.OutputFile{
		Project:       rec.Project,
		Batch:         rec.Batch,
		FileID:        rec.FileID,
		Filename:      rec.Filename,
		Path:          rec.Path,
		EncryptedPath: rec.EncryptedPath,
		SplitBy:       rec.SplitBy,
		SplitValue:    rec.Value,
		CreatedAt:     rec.CreatedAt,
	}
}

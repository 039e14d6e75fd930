package xlbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/locvowork/xlfilecreator/pkg/dataflow"
	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// TemplateSpec is one template placed as a sheet of every output workbook.
type TemplateSpec struct {
	Template *xltemplate.Template
	// SplitByValue filters the template's data rows to the workbook's split
	// value. Templates with it unset are included whole in every workbook.
	SplitByValue bool
	// SheetName defaults to Sheet<j>, j being the 1-based template position.
	SheetName string
	Render    xltemplate.RenderOptions
}

// Job describes one batch run.
type Job struct {
	ProjectName string
	Templates   []TemplateSpec
	// SplitBy is the column partitioning the data into one workbook per
	// value. Empty produces a single workbook named after the project.
	SplitBy string
	// SplitValues lists the values to produce, in order. Nil means every
	// distinct value of the split column of the first split template.
	SplitValues      []string
	Batch            int
	SheetPassword    string
	WorkbookPassword string
	ProtectFiles     bool
	RandomPassword   bool
	Zip              bool
}

// OutputFileRecord describes one generated workbook.
type OutputFileRecord struct {
	Project       string
	Batch         int
	FileID        string
	Filename      string
	Path          string
	EncryptedPath string
	SplitBy       string
	Value         string
	Password      string
	CreatedAt     time.Time
}

// Recorder receives a record of every generated workbook.
type Recorder interface {
	Record(ctx context.Context, rec OutputFileRecord) error
}

// BatchRecorder is a Recorder that stores the records of a whole run at once.
// Generate prefers RecordAll when the Recorder implements it.
type BatchRecorder interface {
	Recorder
	RecordAll(ctx context.Context, recs []OutputFileRecord) error
}

// Result summarizes a finished run.
type Result struct {
	Project      Project
	Dir          string
	EncryptedDir string
	Manifest     string
	Archives     []string
	Files        []OutputFileRecord
}

// Generator writes batches of workbooks under OutputDir.
type Generator struct {
	OutputDir string
	Encryptor Encryptor
	Recorder  Recorder
	// EncryptWorkers is the number of files encrypted concurrently; 0 or 1
	// encrypts sequentially. EncryptRetries retries a failed encryption.
	EncryptWorkers int
	EncryptRetries int
	// Now and Rand default to time.Now and crypto/rand.
	Now  func() time.Time
	Rand io.Reader
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Generate validates the job, then writes one workbook per split value. Any
// missing split value or encryptor is reported before the first file is
// written. Files written before a later failure are left on disk.
func (g *Generator) Generate(ctx context.Context, job Job) (*Result, error) {
	l := zerolog.Ctx(ctx)

	values, err := g.plan(ctx, &job)
	if err != nil {
		return nil, err
	}

	now := g.now()
	res := &Result{Project: NewProject(job.ProjectName, now)}
	res.Dir, res.EncryptedDir = OutputDirs(g.OutputDir, res.Project, now)
	if g.OutputDir != "" {
		if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output root: %w", err)
		}
	}
	if err := os.Mkdir(res.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if job.ProtectFiles {
		if err := os.Mkdir(res.EncryptedDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating encrypted output directory: %w", err)
		}
	} else {
		res.EncryptedDir = ""
	}

	var entries []PasswordEntry
	for i, value := range values {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec := OutputFileRecord{
			Project:   res.Project.Name,
			Batch:     job.Batch,
			SplitBy:   job.SplitBy,
			Value:     value,
			CreatedAt: now,
		}
		if job.SplitBy == "" {
			rec.FileID = res.Project.Name
			rec.Filename = res.Project.Name + ".xlsx"
		} else {
			rec.FileID = FileID(res.Project, job.Batch, i+1)
			rec.Filename = FileName(rec.FileID, value, now)
		}
		rec.Path = filepath.Join(res.Dir, rec.Filename)

		if err := g.writeWorkbook(ctx, rec.Path, job, value); err != nil {
			return res, fmt.Errorf("file %s: %w", rec.Filename, err)
		}

		if job.ProtectFiles {
			pw, err := g.password(res.Project, job, value)
			if err != nil {
				return res, err
			}
			rec.Password = pw
			entries = append(entries, PasswordEntry{FileID: rec.FileID, Filename: rec.Filename, Value: value, Password: pw})
		}
		res.Files = append(res.Files, rec)
		l.Info().
			Str("file", rec.Filename).
			Int("index", i+1).
			Int("total", len(values)).
			Msg("workbook written")
	}

	if job.ProtectFiles {
		if err := g.encryptAll(ctx, res, job, entries, now); err != nil {
			return res, err
		}
	}

	if err := g.record(ctx, res.Files); err != nil {
		return res, err
	}

	if job.Zip {
		for _, dir := range []string{res.Dir, res.EncryptedDir} {
			if dir == "" {
				continue
			}
			archive, err := ZipDir(dir)
			if err != nil {
				return res, err
			}
			res.Archives = append(res.Archives, archive)
		}
	}
	return res, nil
}

func (g *Generator) record(ctx context.Context, recs []OutputFileRecord) error {
	switch r := g.Recorder.(type) {
	case nil:
		return nil
	case BatchRecorder:
		if len(recs) == 0 {
			return nil
		}
		if err := r.RecordAll(ctx, recs); err != nil {
			return fmt.Errorf("recording %d file(s): %w", len(recs), err)
		}
		return nil
	default:
		for _, rec := range recs {
			if err := r.Record(ctx, rec); err != nil {
				return fmt.Errorf("recording %s: %w", rec.Filename, err)
			}
		}
		return nil
	}
}

// plan validates the job and returns the value set. It writes nothing.
func (g *Generator) plan(ctx context.Context, job *Job) ([]string, error) {
	if len(job.Templates) == 0 {
		return nil, batchError("templates", errors.New("at least one template is required"))
	}
	for i, spec := range job.Templates {
		if spec.Template == nil {
			return nil, batchError("templates", fmt.Errorf("template %d is nil", i+1))
		}
	}
	if job.Batch < 0 {
		return nil, batchError("batch", fmt.Errorf("must not be negative, got %d", job.Batch))
	}
	if job.Batch == 0 {
		job.Batch = 1
	}
	if job.ProtectFiles {
		if g.Encryptor == nil {
			return nil, batchError("encryptor", errors.New("file protection requires an encryptor"))
		}
		if err := g.Encryptor.Check(ctx); err != nil {
			return nil, err
		}
	}

	if job.SplitBy == "" {
		if job.SplitValues != nil {
			return nil, batchError("split_values", errors.New("split values given without a split column"))
		}
		return []string{""}, nil
	}

	var split []*xltemplate.Template
	for _, spec := range job.Templates {
		if spec.SplitByValue {
			split = append(split, spec.Template)
		}
	}
	if len(split) == 0 {
		return nil, batchError("split_by", fmt.Errorf("no template is split by %q", job.SplitBy))
	}

	var values []string
	var err error
	if job.SplitValues != nil {
		values, err = dedupe(job.SplitValues)
	} else {
		values, err = split[0].DistinctValues(job.SplitBy)
	}
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, batchError("split_values", fmt.Errorf("column %q has no values to split by", job.SplitBy))
	}
	if err := CheckFeasibility(split, job.SplitBy, values); err != nil {
		return nil, err
	}
	return values, nil
}

func batchError(key string, err error) error {
	return &xltemplate.ConfigurationError{Component: "batch", Key: key, Err: err}
}

func (g *Generator) writeWorkbook(ctx context.Context, path string, job Job, value string) error {
	wb := xltemplate.NewWorkbook()
	defer wb.Close()

	r := xltemplate.NewRenderer(wb)
	for j, spec := range job.Templates {
		opts := spec.Render
		if job.SplitBy != "" && spec.SplitByValue {
			opts.Filter = &xltemplate.Filter{Column: job.SplitBy, Value: value}
		}
		v, err := spec.Template.Render(opts)
		if err != nil {
			return err
		}
		name := spec.SheetName
		if name == "" {
			name = fmt.Sprintf("Sheet%d", j+1)
		}
		if err := r.RenderSheet(ctx, spec.Template, v, xltemplate.SheetOptions{Name: name, Password: job.SheetPassword}); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("saving: %w", err)
	}
	if err := wb.Close(); err != nil {
		return err
	}

	if job.WorkbookPassword != "" {
		return xltemplate.ProtectWorkbookFile(path, job.WorkbookPassword)
	}
	return nil
}

func (g *Generator) password(p Project, job Job, value string) (string, error) {
	if job.RandomPassword {
		return RandomPassword(p, g.Rand)
	}
	if job.SplitBy == "" {
		value = p.Name
	}
	return DerivePassword(p, value), nil
}

// encryptAll writes the manifest, then encrypts every file listed in it into
// the encrypted directory.
func (g *Generator) encryptAll(ctx context.Context, res *Result, job Job, entries []PasswordEntry, now time.Time) error {
	column := job.SplitBy
	if column == "" {
		column = "Project"
	}
	res.Manifest = filepath.Join(g.OutputDir, ManifestName(res.Project, now))
	if err := WriteManifest(res.Manifest, column, entries); err != nil {
		return err
	}
	listed, err := ReadManifest(res.Manifest)
	if err != nil {
		return err
	}

	byName := make(map[string]int, len(res.Files))
	for i, f := range res.Files {
		byName[f.Filename] = i
	}
	l := zerolog.Ctx(ctx)
	var done atomic.Int32
	return dataflow.ForEach(ctx, listed, func(ctx context.Context, _ int, e PasswordEntry) error {
		in := filepath.Join(res.Dir, e.Filename)
		out := filepath.Join(res.EncryptedDir, e.Filename)
		if err := g.Encryptor.Encrypt(ctx, e.Password, in, out); err != nil {
			return err
		}
		if i, ok := byName[e.Filename]; ok {
			res.Files[i].EncryptedPath = out
		}
		l.Debug().Str("file", e.Filename).Int32("done", done.Add(1)).Int("total", len(listed)).Msg("workbook encrypted")
		return nil
	},
		dataflow.WithWorkers(g.EncryptWorkers),
		dataflow.WithRetry(g.EncryptRetries, dataflow.LinearBackoff(200*time.Millisecond)),
		dataflow.WithRetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/api/option"

	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/jobconfig"
	"github.com/locvowork/xlfilecreator/internal/logger"
	"github.com/locvowork/xlfilecreator/pkg/simpleexcel"
	"github.com/locvowork/xlfilecreator/pkg/xlbatch"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// ErrNoLedger is returned when file history is asked for without a ledger.
var ErrNoLedger = errors.New("no ledger backend configured")

// Options are the process-wide generator settings.
type Options struct {
	OutputDir         string
	Encryptor         string
	MSOfficeCryptPath string
	ExtraRowCount     int
	EncryptWorkers    int
	EncryptRetries    int
	Google            xlsource.GoogleAuth
	// GoogleOptions are appended to the Sheets client options.
	GoogleOptions []option.ClientOption
}

// GenerationService turns job files and uploaded workbooks into output files.
type GenerationService struct {
	opts   Options
	ledger domain.OutputFileRepository
	now    func() time.Time
}

// NewGenerationService creates the service. ledger may be nil.
func NewGenerationService(opts Options, ledger domain.OutputFileRepository) *GenerationService {
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.ExtraRowCount <= 0 {
		opts.ExtraRowCount = xltemplate.DefaultExtraRowCount
	}
	return &GenerationService{opts: opts, ledger: ledger, now: time.Now}
}

func (s *GenerationService) openSource(ctx context.Context, src jobconfig.SourceConfig) (xlsource.Source, func() error, error) {
	switch src.Type {
	case "excel":
		wb, err := xlsource.OpenWorkbook(src.Path)
		if err != nil {
			return nil, nil, err
		}
		return wb, wb.Close, nil
	case "google":
		gs, err := xlsource.NewGoogleSheet(ctx, src.SpreadsheetID, s.opts.Google, s.opts.GoogleOptions...)
		if err != nil {
			return nil, nil, err
		}
		return gs, func() error { return nil }, nil
	}
	return nil, nil, &xltemplate.ConfigurationError{Component: "source", Key: "type", Err: fmt.Errorf("unknown source type %q", src.Type)}
}

// RunJob loads every template of the job and generates its batch.
func (s *GenerationService) RunJob(ctx context.Context, job *jobconfig.Job) (*domain.BatchSummary, error) {
	ctx = logger.WithLogger(ctx, map[string]interface{}{"project": job.Project, "batch": job.Batch})

	src, closeSrc, err := s.openSource(ctx, job.Source)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer closeSrc()

	templates := make([]*xltemplate.Template, len(job.Templates))
	for i, tc := range job.Templates {
		t, err := xlsource.Load(ctx, src, tc.SheetNames(), tc.TemplateOptions()...)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", tc.Main, err)
		}
		logger.DebugLog(ctx, "loaded template %s: %d column(s), %d data row(s)", tc.Main, len(t.Columns()), t.DataRowCount())
		templates[i] = t
	}

	bj, err := job.BatchJob(templates)
	if err != nil {
		return nil, err
	}

	encName := job.Protection.Encryptor
	if encName == "" {
		encName = s.opts.Encryptor
	}
	enc, err := xlbatch.NewEncryptor(encName, s.opts.MSOfficeCryptPath)
	if err != nil {
		return nil, err
	}

	outDir := job.Output.Dir
	if outDir == "" {
		outDir = s.opts.OutputDir
	}
	gen := &xlbatch.Generator{
		OutputDir:      outDir,
		Encryptor:      enc,
		EncryptWorkers: s.opts.EncryptWorkers,
		EncryptRetries: s.opts.EncryptRetries,
		Now:            s.now,
	}
	if s.ledger != nil {
		gen.Recorder = NewLedgerRecorder(s.ledger)
	}

	logger.InfoLog(ctx, "generating %d template(s) into %s", len(templates), outDir)
	res, err := gen.Generate(ctx, bj)
	if err != nil {
		return nil, err
	}
	return summarize(res), nil
}

func summarize(res *xlbatch.Result) *domain.BatchSummary {
	sum := &domain.BatchSummary{
		Project:      res.Project.Name,
		Dir:          res.Dir,
		EncryptedDir: res.EncryptedDir,
		Manifest:     res.Manifest,
		Archives:     res.Archives,
		Files:        make([]domain.OutputFile, 0, len(res.Files)),
	}
	for _, rec := range res.Files {
		sum.Files = append(sum.Files, toOutputFile(rec))
	}
	return sum
}

// RenderRequest describes a one-off render of an uploaded workbook.
type RenderRequest struct {
	Sheets           xlsource.SheetNames
	SheetName        string
	Filter           string
	ExtraRows        bool
	ExtraRowCount    int
	SkipNumeric      bool
	SheetPassword    string
	WorkbookPassword string
}

// Render materializes one template of the uploaded source workbook into a new
// workbook and returns its bytes.
func (s *GenerationService) Render(ctx context.Context, r io.Reader, req RenderRequest) ([]byte, error) {
	src, err := xlsource.ReadWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if req.Sheets.Main == "" {
		req.Sheets = xlsource.DefaultSheetNames
	}
	var opts []xltemplate.Option
	if req.Filter != "" {
		opts = append(opts, xltemplate.WithRowFilter(req.Filter))
	}
	t, err := xlsource.Load(ctx, src, req.Sheets, opts...)
	if err != nil {
		return nil, err
	}

	count := req.ExtraRowCount
	if req.ExtraRows && count == 0 {
		count = s.opts.ExtraRowCount
	}
	v, err := t.Render(xltemplate.RenderOptions{ExtraRows: req.ExtraRows, ExtraRowCount: count, SkipNumeric: req.SkipNumeric})
	if err != nil {
		return nil, err
	}

	wb := xltemplate.NewWorkbook()
	defer wb.Close()
	name := req.SheetName
	if name == "" {
		name = "Sheet1"
	}
	if err := xltemplate.NewRenderer(wb).RenderSheet(ctx, t, v, xltemplate.SheetOptions{Name: name, Password: req.SheetPassword}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	if req.WorkbookPassword == "" {
		return buf.Bytes(), nil
	}
	return xltemplate.ProtectWorkbookBytes(buf.Bytes(), req.WorkbookPassword)
}

// ListFiles returns a page of the ledger entries of a project together with
// the project's total entry count.
func (s *GenerationService) ListFiles(ctx context.Context, project string, page domain.Page) (*domain.FileList, error) {
	if s.ledger == nil {
		return nil, ErrNoLedger
	}
	if page.Limit <= 0 {
		page = domain.Page{}
	}
	total, err := s.ledger.Count(ctx, project)
	if err != nil {
		return nil, err
	}
	files, err := s.ledger.ListByProject(ctx, project, page)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []domain.OutputFile{}
	}
	return &domain.FileList{Project: project, Total: total, Limit: page.Limit, Offset: page.Offset, Files: files}, nil
}

// PurgeFiles removes every ledger entry of a project and returns how many
// were removed. Files on disk are left alone.
func (s *GenerationService) PurgeFiles(ctx context.Context, project string) (int64, error) {
	if s.ledger == nil {
		return 0, ErrNoLedger
	}
	n, err := s.ledger.DeleteProject(ctx, project)
	if err != nil {
		return n, err
	}
	logger.InfoLog(ctx, "purged %d ledger entr(ies) of project %s", n, project)
	return n, nil
}

// FileReport renders every ledger entry of a project as a workbook. The report
// carries no file passwords; a non-empty password locks the report sheet.
func (s *GenerationService) FileReport(ctx context.Context, project, password string) ([]byte, error) {
	list, err := s.ListFiles(ctx, project, domain.Page{})
	if err != nil {
		return nil, err
	}
	files := list.Files
	logger.DebugLog(ctx, "reporting %d file(s) of project %s", len(files), project)
	return simpleexcel.NewDataExporter().
		AddSheet("Files").
		WithTitle(fmt.Sprintf("%s output files", project)).
		AddColumn("FileID", "File ID", 16).
		AddColumn("Filename", "Filename", 40).
		AddColumn("Batch", "Batch", 8).
		AddColumn("SplitBy", "Split By", 14).
		AddColumn("SplitValue", "Split Value", 18).
		AddColumn("Path", "Path", 50).
		AddColumn("EncryptedPath", "Encrypted Path", 50).
		AddColumn("CreatedAt", "Created At", 20).
		WithData(files).
		Protect(password).
		Build().
		ToBytes()
}

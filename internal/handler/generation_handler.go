package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/jobconfig"
	"github.com/locvowork/xlfilecreator/internal/logger"
	"github.com/locvowork/xlfilecreator/internal/service"
	"github.com/locvowork/xlfilecreator/internal/service/serviceutils"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GenerationHandler struct {
	svc *service.GenerationService
}

func NewGenerationHandler(svc *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var (
		cfgErr    *xltemplate.ConfigurationError
		structErr *xltemplate.StructureError
		dataErr   *xltemplate.DataIntegrityError
		depErr    *xltemplate.MissingDependencyError
	)
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &structErr), errors.As(err, &dataErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, xlsource.ErrSheetNotFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &depErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrNoLedger):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// RenderHandler renders one template of an uploaded workbook and returns the
// new workbook.
func (h *GenerationHandler) RenderHandler(c echo.Context) error {
	var form RenderForm
	if err := c.Bind(&form); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid form", err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing workbook upload", err)
	}
	file, err := fh.Open()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Unreadable upload", err)
	}
	defer file.Close()

	sheets := xlsource.DefaultSheetNames
	if form.Main != "" {
		sheets = xlsource.SheetNames{
			Main:        form.Main,
			Dropdown:    orDefault(form.Dropdown, sheets.Dropdown),
			Options:     orDefault(form.Options, sheets.Options),
			Picklists:   orDefault(form.Picklists, sheets.Picklists),
			Conditional: orDefault(form.Conditional, sheets.Conditional),
		}
	}

	ctx := logger.WithLogger(c.Request().Context(), map[string]interface{}{"upload": fh.Filename})
	data, err := h.svc.Render(ctx, file, service.RenderRequest{
		Sheets:           sheets,
		SheetName:        form.SheetName,
		Filter:           form.Filter,
		ExtraRows:        form.ExtraRows,
		ExtraRowCount:    form.ExtraRowCount,
		SkipNumeric:      form.SkipNumeric,
		SheetPassword:    form.SheetPassword,
		WorkbookPassword: form.WorkbookPassword,
	})
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to render workbook", err)
	}

	name := strings.TrimSuffix(fh.Filename, ".xlsx") + "-rendered.xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// CreateBatchHandler runs a YAML job posted as the request body. Output
// always goes to the server's output directory.
func (h *GenerationHandler) CreateBatchHandler(c echo.Context) error {
	job, err := jobconfig.LoadFromReader(c.Request().Body)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid job", err)
	}
	job.Output.Dir = ""

	summary, err := h.svc.RunJob(c.Request().Context(), job)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to generate batch", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Batch generated successfully", summary)
}

// ListFilesHandler returns a page of the ledger entries of a project with the
// project's total entry count.
func (h *GenerationHandler) ListFilesHandler(c echo.Context) error {
	var q ListFilesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid paging", err)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid paging",
			fmt.Errorf("limit and offset must not be negative"))
	}

	list, err := h.svc.ListFiles(c.Request().Context(), c.Param("project"), domain.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to list files", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Files listed successfully", list)
}

// PurgeFilesHandler removes the ledger entries of a project.
func (h *GenerationHandler) PurgeFilesHandler(c echo.Context) error {
	project := c.Param("project")
	n, err := h.svc.PurgeFiles(c.Request().Context(), project)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to purge files", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Files purged successfully",
		map[string]any{"project": project, "deleted": n})
}

// FileReportHandler downloads the ledger entries of a project as xlsx. A
// password query parameter locks the report sheet.
func (h *GenerationHandler) FileReportHandler(c echo.Context) error {
	var q ReportQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query", err)
	}
	project := c.Param("project")
	data, err := h.svc.FileReport(c.Request().Context(), project, q.Password)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to build file report", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", project+"-files.xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

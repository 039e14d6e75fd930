package handler

// RenderForm is the multipart form of POST /api/v1/render besides the file.
type RenderForm struct {
	Main             string `form:"main"`
	Dropdown         string `form:"dropdown"`
	Options          string `form:"options"`
	Picklists        string `form:"picklists"`
	Conditional      string `form:"conditional"`
	SheetName        string `form:"sheet_name"`
	Filter           string `form:"filter"`
	ExtraRows        bool   `form:"extra_rows"`
	ExtraRowCount    int    `form:"extra_row_count"`
	SkipNumeric      bool   `form:"skip_numeric"`
	SheetPassword    string `form:"sheet_password"`
	WorkbookPassword string `form:"workbook_password"`
}

// ListFilesQuery is the query of GET /api/v1/projects/:project/files.
type ListFilesQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ReportQuery is the query of GET /api/v1/projects/:project/report.
type ReportQuery struct {
	Password string `query:"password"`
}

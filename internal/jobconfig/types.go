package jobconfig

// types.go - YAML-mappable job description of one batch run

// Job is a complete batch run read from YAML.
type Job struct {
	Version    string            `yaml:"version"`
	Project    string            `yaml:"project,omitempty"`
	Variables  map[string]string `yaml:"variables,omitempty"`
	Source     SourceConfig      `yaml:"source"`
	Templates  []TemplateConfig  `yaml:"templates" validate:"required,min=1,dive"`
	Split      *SplitConfig      `yaml:"split,omitempty"`
	Batch      int               `yaml:"batch,omitempty" validate:"gte=0"`
	Protection ProtectionConfig  `yaml:"protection,omitempty"`
	Output     OutputConfig      `yaml:"output,omitempty"`
}

// SourceConfig locates the workbook the templates are read from.
type SourceConfig struct {
	Type          string `yaml:"type" validate:"required,oneof=excel google"`
	Path          string `yaml:"path,omitempty" validate:"required_if=Type excel"`
	SpreadsheetID string `yaml:"spreadsheet_id,omitempty" validate:"required_if=Type google"`
}

// TemplateConfig names the sheets of one template and how it is rendered.
type TemplateConfig struct {
	Main          string `yaml:"main" validate:"required"`
	Dropdown      string `yaml:"dropdown,omitempty"`
	Options       string `yaml:"options,omitempty"`
	Picklists     string `yaml:"picklists,omitempty"`
	Conditional   string `yaml:"conditional,omitempty"`
	SheetName     string `yaml:"sheet_name,omitempty" validate:"omitempty,max=31"`
	SplitByValue  *bool  `yaml:"split_by_value,omitempty"`
	Filter        string `yaml:"filter,omitempty"`
	ExtraRows     bool   `yaml:"extra_rows,omitempty"`
	ExtraRowCount int    `yaml:"extra_row_count,omitempty" validate:"gte=0"`
	SkipNumeric   bool   `yaml:"skip_numeric,omitempty"`
}

// SplitConfig partitions the output into one workbook per column value.
type SplitConfig struct {
	Column string   `yaml:"column" validate:"required"`
	Values []string `yaml:"values,omitempty" validate:"dive,required"`
}

// ProtectionConfig holds the passwords. Values may reference ${VAR}.
type ProtectionConfig struct {
	SheetPassword    string `yaml:"sheet_password,omitempty"`
	WorkbookPassword string `yaml:"workbook_password,omitempty"`
	ProtectFiles     bool   `yaml:"protect_files,omitempty"`
	RandomPassword   bool   `yaml:"random_password,omitempty"`
	Encryptor        string `yaml:"encryptor,omitempty" validate:"omitempty,oneof=msoffice native"`
}

// OutputConfig controls where files go.
type OutputConfig struct {
	Dir string `yaml:"dir,omitempty"`
	Zip bool   `yaml:"zip,omitempty"`
}

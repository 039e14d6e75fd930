package jobconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/locvowork/xlfilecreator/pkg/xlbatch"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// loader.go - Job loading and validation

var validate = validator.New()

// Load loads a job from a YAML file
func Load(path string) (*Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening job file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader loads a job from an io.Reader
func LoadFromReader(r io.Reader) (*Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading job: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing YAML job: %w", err)
	}

	job.applyDefaults()
	if err := job.ResolveVariables(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(&job); err != nil {
		return nil, fmt.Errorf("validating job: %w", err)
	}

	return &job, nil
}

// LoadFromString loads a job from a YAML string
func LoadFromString(yamlContent string) (*Job, error) {
	return LoadFromReader(strings.NewReader(yamlContent))
}

// Validate checks field constraints, then the rules spanning fields.
func Validate(j *Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}

	if err := validate.Struct(j); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fieldPath(fe.Namespace()), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	names := make(map[string]bool)
	for i, t := range j.Templates {
		name := t.SheetName
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if names[name] {
			return fmt.Errorf("templates[%d]: duplicate sheet name '%s'", i, name)
		}
		names[name] = true
	}

	if j.Split == nil {
		for i, t := range j.Templates {
			if t.SplitByValue != nil && *t.SplitByValue {
				return fmt.Errorf("templates[%d]: split_by_value requires a split column", i)
			}
		}
	}

	if j.Protection.ProtectFiles && j.Protection.Encryptor == "" {
		return fmt.Errorf("protection: encryptor is required when protect_files is set")
	}

	return nil
}

// fieldPath turns "Job.Templates[0].Main" into "templates[0].main".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Job.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func toSnake(s string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(s, "${1}_${2}"))
}

// applyDefaults applies default values to the job
func (j *Job) applyDefaults() {
	if j.Version == "" {
		j.Version = "1.0"
	}

	if j.Variables == nil {
		j.Variables = make(map[string]string)
	}

	if j.Source.Type == "" {
		switch {
		case j.Source.Path != "":
			j.Source.Type = "excel"
		case j.Source.SpreadsheetID != "":
			j.Source.Type = "google"
		}
	}

	if j.Batch == 0 {
		j.Batch = 1
	}

	if j.Protection.ProtectFiles && j.Protection.Encryptor == "" {
		j.Protection.Encryptor = "native"
	}

	defaults := xlsource.DefaultSheetNames
	for i := range j.Templates {
		t := &j.Templates[i]
		if t.Dropdown == "" {
			t.Dropdown = defaults.Dropdown
		}
		if t.Options == "" {
			t.Options = defaults.Options
		}
		if t.Picklists == "" {
			t.Picklists = defaults.Picklists
		}
		if t.Conditional == "" {
			t.Conditional = defaults.Conditional
		}
		if t.SplitByValue == nil && j.Split != nil {
			split := true
			t.SplitByValue = &split
		}
		if t.ExtraRows && t.ExtraRowCount == 0 {
			t.ExtraRowCount = xltemplate.DefaultExtraRowCount
		}
	}
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveVariables substitutes ${VAR} placeholders in passwords and source
// locations. Job variables take precedence over lookup, which is usually
// os.LookupEnv. An unresolved placeholder is an error.
func (j *Job) ResolveVariables(lookup func(string) (string, bool)) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"project", &j.Project},
		{"source.path", &j.Source.Path},
		{"source.spreadsheet_id", &j.Source.SpreadsheetID},
		{"protection.sheet_password", &j.Protection.SheetPassword},
		{"protection.workbook_password", &j.Protection.WorkbookPassword},
		{"output.dir", &j.Output.Dir},
	}
	for _, f := range fields {
		var missing []string
		*f.ptr = placeholder.ReplaceAllStringFunc(*f.ptr, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := j.Variables[name]; ok {
				return v
			}
			if lookup != nil {
				if v, ok := lookup(name); ok {
					return v
				}
			}
			missing = append(missing, name)
			return m
		})
		if len(missing) > 0 {
			return fmt.Errorf("%s: unresolved variables %s", f.name, strings.Join(missing, ", "))
		}
	}
	return nil
}

// SheetNames returns the source sheet names of a template.
func (t TemplateConfig) SheetNames() xlsource.SheetNames {
	return xlsource.SheetNames{
		Main:        t.Main,
		Dropdown:    t.Dropdown,
		Options:     t.Options,
		Picklists:   t.Picklists,
		Conditional: t.Conditional,
	}
}

// RenderOptions returns how the template's sheet is laid out.
func (t TemplateConfig) RenderOptions() xltemplate.RenderOptions {
	return xltemplate.RenderOptions{
		ExtraRows:     t.ExtraRows,
		ExtraRowCount: t.ExtraRowCount,
		SkipNumeric:   t.SkipNumeric,
	}
}

// TemplateOptions returns the options passed to xltemplate.New.
func (t TemplateConfig) TemplateOptions() []xltemplate.Option {
	if t.Filter == "" {
		return nil
	}
	return []xltemplate.Option{xltemplate.WithRowFilter(t.Filter)}
}

// BatchJob converts the job into a batch job for loaded templates, given in
// the order of Templates.
func (j *Job) BatchJob(templates []*xltemplate.Template) (xlbatch.Job, error) {
	if len(templates) != len(j.Templates) {
		return xlbatch.Job{}, fmt.Errorf("%d templates loaded for %d configured", len(templates), len(j.Templates))
	}
	bj := xlbatch.Job{
		ProjectName:      j.Project,
		Batch:            j.Batch,
		SheetPassword:    j.Protection.SheetPassword,
		WorkbookPassword: j.Protection.WorkbookPassword,
		ProtectFiles:     j.Protection.ProtectFiles,
		RandomPassword:   j.Protection.RandomPassword,
		Zip:              j.Output.Zip,
	}
	if j.Split != nil {
		bj.SplitBy = j.Split.Column
		bj.SplitValues = j.Split.Values
	}
	for i, t := range j.Templates {
		bj.Templates = append(bj.Templates, xlbatch.TemplateSpec{
			Template:     templates[i],
			SplitByValue: t.SplitByValue != nil && *t.SplitByValue,
			SheetName:    t.SheetName,
			Render:       t.RenderOptions(),
		})
	}
	return bj, nil
}

package xlbatch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const (
	dateLayout    = "20060102"
	stampLayout   = "20060102_15-04-05"
	defaultPrefix = "Project_"
)

// Project is the name every output of a batch is prefixed with. Named is
// false when no usable name was supplied and a timestamped default was used.
type Project struct {
	Name  string
	Named bool
}

// NewProject keeps the letters and digits of name. An empty result falls back
// to Project_<YYYYMMDD_HH-MM-SS>.
func NewProject(name string, now time.Time) Project {
	clean := alphanumeric(name)
	if clean == "" {
		return Project{Name: defaultPrefix + now.Format(stampLayout)}
	}
	return Project{Name: clean, Named: true}
}

// passwordPrefix is the project name for named projects and empty otherwise.
func (p Project) passwordPrefix() string {
	if p.Named {
		return p.Name
	}
	return ""
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeValue keeps the letters, digits and spaces of a split value so it
// can be embedded in a file name. Leading and trailing spaces are kept.
func SanitizeValue(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FileID identifies the index-th file of a batch: <Project>ID<batch><NNN>.
func FileID(p Project, batch, index int) string {
	return fmt.Sprintf("%sID%d%03d", p.Name, batch, index)
}

// FileName is <FileID>-<sanitized value>-<YYYYMMDD>.xlsx.
func FileName(fileID, value string, day time.Time) string {
	return fmt.Sprintf("%s-%s-%s.xlsx", fileID, SanitizeValue(value), day.Format(dateLayout))
}

// OutputDirs returns the plain and the encrypted output directory of a run.
func OutputDirs(root string, p Project, day time.Time) (string, string) {
	d := day.Format(dateLayout)
	return filepath.Join(root, fmt.Sprintf("%s_XL_files_%s", p.Name, d)),
		filepath.Join(root, fmt.Sprintf("%s_XL_files_password_%s", p.Name, d))
}

// ManifestName is <Project>-PasswordMaster-<YYYYMMDD>.csv.
func ManifestName(p Project, day time.Time) string {
	return fmt.Sprintf("%s-PasswordMaster-%s.csv", p.Name, day.Format(dateLayout))
}

package xlbatch

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// PasswordEntry is one row of the password manifest.
type PasswordEntry struct {
	FileID   string `csv:"File ID"`
	Filename string `csv:"Filename"`
	Value    string `csv:"-"`
	Password string `csv:"Password"`
}

// WriteManifest writes the password manifest with the columns
// File ID, Filename, <splitColumn>, Password.
func WriteManifest(path, splitColumn string, entries []PasswordEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"File ID", "Filename", splitColumn, "Password"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.FileID, e.Filename, e.Value, e.Password}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return f.Close()
}

// ReadManifest reads back the file names and passwords of a manifest. The
// split value column is not returned.
func ReadManifest(path string) ([]PasswordEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	var entries []PasswordEntry
	if err := gocsv.Unmarshal(f, &entries); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return entries, nil
}

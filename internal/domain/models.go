package domain

import "time"

// ==================== OUTPUT LEDGER ====================

// OutputFile is one generated workbook as stored by the ledger backends.
// Passwords stay in the run's manifest and are never persisted here.
type OutputFile struct {
	ID            int64     `json:"id,omitempty" db:"id" datastore:"-"`
	Project       string    `json:"project" db:"project" datastore:"Project"`
	Batch         int       `json:"batch" db:"batch" datastore:"Batch"`
	FileID        string    `json:"file_id" db:"file_id" datastore:"FileID"`
	Filename      string    `json:"filename" db:"filename" datastore:"Filename"`
	Path          string    `json:"path" db:"path" datastore:"Path,noindex"`
	EncryptedPath string    `json:"encrypted_path,omitempty" db:"encrypted_path" datastore:"EncryptedPath,noindex"`
	SplitBy       string    `json:"split_by,omitempty" db:"split_by" datastore:"SplitBy"`
	SplitValue    string    `json:"split_value,omitempty" db:"split_value" datastore:"SplitValue"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" datastore:"CreatedAt"`
}

// Key identifies a file across backends.
func (f OutputFile) Key() string {
	return f.Project + "/" + f.Filename
}

// BatchSummary is the JSON answer of a finished batch run.
type BatchSummary struct {
	Project      string       `json:"project"`
	Dir          string       `json:"dir"`
	EncryptedDir string       `json:"encrypted_dir,omitempty"`
	Manifest     string       `json:"manifest,omitempty"`
	Archives     []string     `json:"archives,omitempty"`
	Files        []OutputFile `json:"files"`
}

// FileList is one page of a project's ledger entries.
type FileList struct {
	Project string       `json:"project"`
	Total   int64        `json:"total"`
	Limit   int          `json:"limit,omitempty"`
	Offset  int          `json:"offset,omitempty"`
	Files   []OutputFile `json:"files"`
}

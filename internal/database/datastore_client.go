package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/xlfilecreator/internal/domain"
)

// OutputFileKind is the Datastore kind of ledger entries.
const OutputFileKind = "OutputFile"

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to the project's Datastore. DATASTORE_EMULATOR_HOST
// is honored by the underlying client.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("datastore: project id is required")
	}
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("datastore: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// WrapDatastoreClient wraps existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

// Close releases the client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

func outputFileKey(f *domain.OutputFile) *datastore.Key {
	return datastore.NameKey(OutputFileKind, f.Key(), nil)
}

// Save stores one ledger entry keyed by project and filename.
func (dc *DatastoreClient) Save(ctx context.Context, f *domain.OutputFile) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}
	if _, err := dc.client.Put(ctx, outputFileKey(f), f); err != nil {
		return fmt.Errorf("datastore: saving %s: %w", f.Key(), err)
	}
	return nil
}

// BatchSave stores several entries in one call.
func (dc *DatastoreClient) BatchSave(ctx context.Context, files []domain.OutputFile) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}
	if len(files) == 0 {
		return nil
	}
	keys := make([]*datastore.Key, len(files))
	for i := range files {
		keys[i] = outputFileKey(&files[i])
	}
	if _, err := dc.client.PutMulti(ctx, keys, files); err != nil {
		return fmt.Errorf("datastore: saving %d entries: %w", len(files), err)
	}
	return nil
}

func projectQuery(project string) *datastore.Query {
	return datastore.NewQuery(OutputFileKind).FilterField("Project", "=", project)
}

// ListByProject returns a page of the entries of a project ordered by file
// ID.
func (dc *DatastoreClient) ListByProject(ctx context.Context, project string, page domain.Page) ([]domain.OutputFile, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var result []domain.OutputFile
	q := projectQuery(project).Order("FileID")
	if page.Limit > 0 {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}
	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, fmt.Errorf("datastore: listing %s: %w", project, err)
	}
	return result, nil
}

// Count returns the number of entries of a project.
func (dc *DatastoreClient) Count(ctx context.Context, project string) (int64, error) {
	if dc == nil || dc.client == nil {
		return 0, fmt.Errorf("datastore client is nil")
	}
	n, err := dc.client.Count(ctx, projectQuery(project))
	if err != nil {
		return 0, fmt.Errorf("datastore: counting %s: %w", project, err)
	}
	return int64(n), nil
}

// maxDeleteKeys is the Datastore limit of keys per DeleteMulti call.
const maxDeleteKeys = 500

// DeleteProject removes every entry of a project.
func (dc *DatastoreClient) DeleteProject(ctx context.Context, project string) (int64, error) {
	if dc == nil || dc.client == nil {
		return 0, fmt.Errorf("datastore client is nil")
	}
	keys, err := dc.client.GetAll(ctx, projectQuery(project).KeysOnly(), nil)
	if err != nil {
		return 0, fmt.Errorf("datastore: listing keys of %s: %w", project, err)
	}
	for start := 0; start < len(keys); start += maxDeleteKeys {
		end := min(start+maxDeleteKeys, len(keys))
		if err := dc.client.DeleteMulti(ctx, keys[start:end]); err != nil {
			return int64(start), fmt.Errorf("datastore: deleting %s: %w", project, err)
		}
	}
	return int64(len(keys)), nil
}

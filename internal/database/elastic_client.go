package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/xlfilecreator/internal/domain"
)

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x. Extra
// options are applied after the URL.
func NewElasticSearchClient(url, index string, opts ...elastic.ClientOptionFunc) (*ElasticSearchClient, error) {
	if index == "" {
		return nil, fmt.Errorf("elasticsearch: index is required")
	}
	options := append([]elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	}, opts...)
	client, err := elastic.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: index}, nil
}

// Save indexes a ledger entry using project/filename as document ID.
func (es *ElasticSearchClient) Save(ctx context.Context, f *domain.OutputFile) error {
	_, err := es.client.Index().
		Index(es.index).
		Id(f.Key()).
		BodyJson(f).
		Refresh("true"). // Make changes immediately searchable
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", f.Key(), err)
	}
	return nil
}

// BatchSave indexes several entries in one bulk request.
func (es *ElasticSearchClient) BatchSave(ctx context.Context, files []domain.OutputFile) error {
	bulkRequest := es.client.Bulk()
	for i := range files {
		bulkRequest = bulkRequest.Add(elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(files[i].Key()).
			Doc(files[i]))
	}
	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}
	return nil
}

func projectTerm(project string) elastic.Query {
	return elastic.NewTermQuery("project.keyword", project)
}

// defaultListSize bounds an unpaged listing.
const defaultListSize = 1000

// ListByProject returns a page of the entries of a project ordered by file
// ID. An unpaged listing returns at most defaultListSize entries.
func (es *ElasticSearchClient) ListByProject(ctx context.Context, project string, page domain.Page) ([]domain.OutputFile, error) {
	search := es.client.Search().
		Index(es.index).
		Query(projectTerm(project)).
		Sort("file_id.keyword", true).
		Size(defaultListSize)
	if page.Limit > 0 {
		search = search.From(page.Offset).Size(page.Limit)
	}
	searchResult, err := search.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var files []domain.OutputFile
	for _, hit := range searchResult.Hits.Hits {
		var f domain.OutputFile
		if err := json.Unmarshal(hit.Source, &f); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", hit.Id, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// Count returns the number of entries of a project.
func (es *ElasticSearchClient) Count(ctx context.Context, project string) (int64, error) {
	n, err := es.client.Count(es.index).Query(projectTerm(project)).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// DeleteProject removes every entry of a project.
func (es *ElasticSearchClient) DeleteProject(ctx context.Context, project string) (int64, error) {
	res, err := es.client.DeleteByQuery(es.index).
		Query(projectTerm(project)).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete by query failed: %w", err)
	}
	return res.Deleted, nil
}

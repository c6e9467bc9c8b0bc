package audit

import (
	"bytes"
	"context"
	"encoding/json"

	"loan-workers/internal/common/database"
)

// Indexer persists an audit report to a searchable store.
type Indexer interface {
	IndexReport(ctx context.Context, docID string, report *Report) error
}

type elasticsearchIndexer struct {
	client *database.ElasticsearchClient
	index  string
}

// NewElasticsearchIndexer adapts the Elasticsearch client to the Indexer
// interface.
func NewElasticsearchIndexer(client *database.ElasticsearchClient, index string) Indexer {
	return &elasticsearchIndexer{client: client, index: index}
}

func (e *elasticsearchIndexer) IndexReport(ctx context.Context, docID string, report *Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return e.client.Index(ctx, e.index, docID, bytes.NewReader(body))
}

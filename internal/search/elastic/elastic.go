// Package elastic implements search.Index on Elasticsearch. The cluster
// pushes no availability events, so health is decided by a synchronous
// cluster-health probe each time the index is about to be used.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"bookstand/internal/search"
	"bookstand/internal/search/config"
)

// Client is an Elasticsearch-backed search index.
type Client struct {
	es        *elasticsearch.Client
	prefix    string
	fields    map[string][]string
	opTimeout time.Duration
	logger    *slog.Logger
}

var _ search.Index = (*Client)(nil)

// New builds the client. No connection is attempted here; the first probe
// decides availability.
func New(cfg config.Config, fields map[string][]string, logger *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("building elasticsearch client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		es:        es,
		prefix:    cfg.IndexPrefix,
		fields:    fields,
		opTimeout: cfg.OpTimeout.Std(),
		logger:    logger.With("component", "search"),
	}, nil
}

func (c *Client) indexName(collection string) string {
	if c.prefix == "" {
		return collection
	}
	return c.prefix + "-" + collection
}

func (c *Client) Index(ctx context.Context, collection string, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	res, err := c.es.Index(c.indexName(collection), bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	return c.checkResponse(res, err)
}

func (c *Client) Update(ctx context.Context, collection string, id string, doc any) error {
	body, err := json.Marshal(map[string]any{"doc": doc, "doc_as_upsert": true})
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	res, err := c.es.Update(c.indexName(collection), id, bytes.NewReader(body),
		c.es.Update.WithContext(ctx),
	)
	return c.checkResponse(res, err)
}

func (c *Client) Delete(ctx context.Context, collection string, id string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	res, err := c.es.Delete(c.indexName(collection), id,
		c.es.Delete.WithContext(ctx),
	)
	if res != nil && res.StatusCode == http.StatusNotFound {
		// The document was never indexed; nothing to remove.
		drain(res)
		return nil
	}
	return c.checkResponse(res, err)
}

func (c *Client) Search(ctx context.Context, collection string, query string, from int, size int) (*search.Result, error) {
	fields := c.fields[collection]
	if len(fields) == 0 {
		fields = []string{"*"}
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": fields,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName(collection)),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithFrom(from),
		c.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.Status())
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	result := &search.Result{Total: envelope.Hits.Total.Value}
	for _, h := range envelope.Hits.Hits {
		result.Hits = append(result.Hits, search.Hit{ID: h.ID, Source: h.Source})
	}
	return result, nil
}

// Probe treats any transport error, non-2xx response or red cluster status
// as unavailable. The caller bounds the deadline.
func (c *Client) Probe(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("cluster health failed: %s", res.Status())
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding cluster health: %w", err)
	}
	if body.Status == "red" {
		return fmt.Errorf("cluster status red")
	}
	return nil
}

func (c *Client) Close() error { return nil }

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *Client) checkResponse(res *esapi.Response, err error) error {
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func drain(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/internal/resilience/retry"
)

var (
	// ErrIndexNotFound is returned when searching an index that does not exist.
	ErrIndexNotFound = errors.New("search index not found")

	ErrEmptyQuery = errors.New("search query has no clauses")
)

const refreshWaitFor = "wait_for"

// Index implements repository.SearchIndex.
type Index struct {
	client     *es.Client
	breaker    *circuitbreaker.Breaker
	maxResults int
}

var _ repository.SearchIndex = (*Index)(nil)

// New wraps client. maxResults <= 0 means 100.
func New(client *es.Client, maxResults int) *Index {
	if maxResults <= 0 {
		maxResults = 100
	}
	settings := circuitbreaker.For(circuitbreaker.Search)
	settings.IsSuccessful = answered
	return &Index{
		client:     client,
		breaker:    circuitbreaker.New(settings),
		maxResults: maxResults,
	}
}

// mapping analyzes title and msg with the language analyzer; the remaining
// fields are stored for display only.
func mapping(analyzer string) map[string]any {
	text := map[string]any{"type": "text", "analyzer": analyzer}
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"news_id":   map[string]any{"type": "keyword"},
				"language":  map[string]any{"type": "keyword"},
				"title":     text,
				"msg":       text,
				"img":       map[string]any{"type": "keyword", "index": false},
				"published": map[string]any{"type": "date"},
			},
		},
	}
}

// EnsureIndex creates the index unless it already exists.
func (ix *Index) EnsureIndex(ctx context.Context, name, analyzer string) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(mapping(analyzer)); err != nil {
		return fmt.Errorf("error encoding mapping: %w", err)
	}

	res, err := ix.client.Indices.Create(
		name,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer closeBody(res)

	if res.IsError() {
		e := decodeError(res)
		if e.Type == "resource_already_exists_exception" {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, e)
	}

	slog.Info("created search index", slog.String("index", name), slog.String("analyzer", analyzer))
	return nil
}

// EnsureIndices creates "<collection>_<code>" for every language.
func (ix *Index) EnsureIndices(ctx context.Context, collection string, languages entity.Languages) error {
	for _, code := range languages.Codes() {
		lang := languages[code]
		analyzer := lang.Analyzer
		if analyzer == "" {
			analyzer = lang.Name
		}
		if err := ix.EnsureIndex(ctx, entity.IndexName(collection, code), analyzer); err != nil {
			return err
		}
	}
	return nil
}

// Index writes entry under its id and waits for the next refresh, so a
// search issued after Index returns sees the entry. Cluster-side 5xx and 429
// responses are marked transient for retry.
func (ix *Index) Index(ctx context.Context, name string, entry *entity.Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.ID, err)
	}

	_, err = circuitbreaker.Call(ix.breaker, func() (struct{}, error) {
		res, err := ix.client.Index(
			name,
			bytes.NewReader(body),
			ix.client.Index.WithContext(ctx),
			ix.client.Index.WithDocumentID(entry.ID),
			ix.client.Index.WithRefresh(refreshWaitFor),
		)
		if err != nil {
			return struct{}{}, retry.Transient(fmt.Errorf("index %s/%s: %w", name, entry.ID, err))
		}
		defer closeBody(res)

		if res.IsError() {
			return struct{}{}, classify(res.StatusCode, fmt.Errorf("index %s/%s: %w", name, entry.ID, decodeError(res)))
		}
		return struct{}{}, nil
	})
	return err
}

// Search runs a bool/should query and returns hit sources in relevance order.
func (ix *Index) Search(ctx context.Context, name string, q repository.BoolShouldQuery) ([]entity.Entry, error) {
	if len(q.Should) == 0 {
		return nil, ErrEmptyQuery
	}
	size := q.Size
	if size <= 0 || size > ix.maxResults {
		size = ix.maxResults
	}

	should := make([]map[string]any, 0, len(q.Should))
	for _, m := range q.Should {
		should = append(should, map[string]any{
			"match": map[string]any{m.Field: m.Query},
		})
	}
	query := map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}

	return circuitbreaker.Call(ix.breaker, func() ([]entity.Entry, error) {
		res, err := ix.client.Search(
			ix.client.Search.WithContext(ctx),
			ix.client.Search.WithIndex(name),
			ix.client.Search.WithBody(&buf),
		)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", name, err)
		}
		defer closeBody(res)

		if res.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
		}
		if res.IsError() {
			return nil, fmt.Errorf("search %s: %w", name, decodeError(res))
		}

		var parsed searchResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		entries := make([]entity.Entry, 0, len(parsed.Hits.Hits))
		for _, h := range parsed.Hits.Hits {
			entries = append(entries, h.Source)
		}
		return entries, nil
	})
}

// answered keeps a missing index from counting against the cluster breaker.
func answered(err error) bool {
	return err == nil || errors.Is(err, ErrIndexNotFound)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string       `json:"_id"`
			Source entity.Entry `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ClusterError is the error object of an Elasticsearch error response.
type ClusterError struct {
	Status int    `json:"-"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e *ClusterError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch status %d", e.Status)
	}
	return fmt.Sprintf("elasticsearch status %d: %s: %s", e.Status, e.Type, e.Reason)
}

func decodeError(res *esapi.Response) *ClusterError {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	e := &ClusterError{Status: res.StatusCode}
	raw, err := io.ReadAll(res.Body)
	if err != nil || json.Unmarshal(raw, &body) != nil || len(body.Error) == 0 {
		return e
	}
	if json.Unmarshal(body.Error, e) != nil {
		// some errors are a plain string
		_ = json.Unmarshal(body.Error, &e.Reason)
	}
	return e
}

func classify(status int, err error) error {
	if status >= 500 || status == http.StatusTooManyRequests {
		return retry.Transient(err)
	}
	return err
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}

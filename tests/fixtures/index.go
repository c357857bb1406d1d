package fixtures

import (
	"context"
	"sort"
	"strings"
	"sync"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// SearchIndex is an in-memory repository.SearchIndex. Search matches a
// clause when its field contains the query case-insensitively; documents
// matching more clauses rank first, ties by id.
type SearchIndex struct {
	mu      sync.Mutex
	docs    map[string]map[string]entity.Entry
	created map[string]string
	writes  int
	err     error
}

var _ repository.SearchIndex = (*SearchIndex)(nil)

// NewSearchIndex returns an index with no documents.
func NewSearchIndex() *SearchIndex {
	return &SearchIndex{
		docs:    map[string]map[string]entity.Entry{},
		created: map[string]string{},
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (x *SearchIndex) FailWith(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.err = err
}

// Writes returns the number of Index calls, failed ones included.
func (x *SearchIndex) Writes() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.writes
}

// Analyzer returns the analyzer an index was created with.
func (x *SearchIndex) Analyzer(name string) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	a, ok := x.created[name]
	return a, ok
}

// Doc returns a stored document.
func (x *SearchIndex) Doc(name, id string) (entity.Entry, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	doc, ok := x.docs[name][id]
	return doc, ok
}

// IDs returns the sorted document ids of an index.
func (x *SearchIndex) IDs(name string) []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	ids := make([]string, 0, len(x.docs[name]))
	for id := range x.docs[name] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (x *SearchIndex) EnsureIndex(_ context.Context, name, analyzer string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return x.err
	}
	if _, ok := x.created[name]; !ok {
		x.created[name] = analyzer
	}
	return nil
}

func (x *SearchIndex) Index(_ context.Context, name string, e *entity.Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.writes++
	if x.err != nil {
		return x.err
	}
	if x.docs[name] == nil {
		x.docs[name] = map[string]entity.Entry{}
	}
	doc := *e
	doc.IndexedAt = nil
	x.docs[name][e.ID] = doc
	return nil
}

func (x *SearchIndex) Search(_ context.Context, name string, q repository.BoolShouldQuery) ([]entity.Entry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err != nil {
		return nil, x.err
	}

	type hit struct {
		doc   entity.Entry
		score int
	}
	var hits []hit
	for _, doc := range x.docs[name] {
		score := 0
		for _, m := range q.Should {
			if strings.Contains(strings.ToLower(field(doc, m.Field)), strings.ToLower(m.Query)) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})

	out := make([]entity.Entry, 0, len(hits))
	for _, h := range hits {
		if q.Size > 0 && len(out) == q.Size {
			break
		}
		out = append(out, h.doc)
	}
	return out, nil
}

func field(doc entity.Entry, name string) string {
	switch name {
	case "title":
		return doc.Title
	case "msg":
		return doc.Body
	default:
		return ""
	}
}

package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mwantia/coda/pkg/metadata"
)

const (
	// FieldPath addresses the structural path of a document in a query.
	FieldPath = "path"
	// FieldID addresses the store assigned identifier of a document in a query.
	FieldID = metadata.InternalID
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// Document is the flat record kept for every tracked path.
type Document struct {
	ID        string        `json:"_id"`
	Path      string        `json:"path"`
	Fields    *metadata.Set `json:"fields"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with d.
func (d *Document) Clone() *Document {
	c := *d
	c.Fields = d.Fields.Clone()
	return &c
}

// Query is an exact-match predicate over document fields. The keys "path"
// and "_id" match the structural fields, every other key a metadata field.
type Query map[string]any

// Keys returns the query keys in sorted order.
func (q Query) Keys() []string {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the path the query pins down, if any.
func (q Query) Path() (string, bool) {
	value, ok := q[FieldPath]
	if !ok {
		return "", false
	}
	path, ok := value.(string)
	return path, ok
}

func (q Query) Match(doc *Document) bool {
	for key, want := range q {
		switch key {
		case FieldPath:
			if !metadata.ValuesEqual(doc.Path, want) {
				return false
			}
		case FieldID:
			if !metadata.ValuesEqual(doc.ID, want) {
				return false
			}
		default:
			got, ok := doc.Fields.Lookup(key)
			if !ok || !metadata.ValuesEqual(got, want) {
				return false
			}
		}
	}
	return true
}

// SortDocuments orders documents by creation time, then by path.
func SortDocuments(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].Path < docs[j].Path
	})
}

// documentKey turns a path into a key that is safe for KV and object stores.
func documentKey(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}

func encodeDocument(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document '%s': %w", doc.Path, err)
	}
	return data, nil
}

func decodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// filterDocuments is shared by the stores that can only scan their records.
func filterDocuments(docs []*Document, query Query) []*Document {
	matches := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		if query.Match(doc) {
			matches = append(matches, doc)
		}
	}
	SortDocuments(matches)
	return matches
}

func first(docs []*Document) (*Document, error) {
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// maxListPages bounds how many "next" links List follows for paginated collections.
const maxListPages = 50

// Resource is a typed JSON collection exposed by the API, e.g. /api/products/.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a collection path to the client.
func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

type listEnvelope struct {
	Results json.RawMessage `json:"results"`
	Data    json.RawMessage `json:"data"`
	Next    *string         `json:"next"`
}

// List fetches the whole collection. Both bare arrays and paginated envelopes
// ({"results": [...], "next": "..."} or {"data": [...]}) are accepted.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.ListWhere(ctx, nil)
}

// ListWhere fetches the collection with query parameters applied.
func (r *Resource[T]) ListWhere(ctx context.Context, params url.Values) ([]T, error) {
	next := r.path
	if len(params) > 0 {
		next += "?" + params.Encode()
	}
	items := make([]T, 0)
	for page := 0; next != "" && page < maxListPages; page++ {
		var raw json.RawMessage
		if err := r.client.Get(ctx, next, &raw); err != nil {
			return nil, err
		}
		batch, following, err := decodeList[T](raw)
		if err != nil {
			return nil, fmt.Errorf("apiclient: decode list %s: %w", r.path, err)
		}
		items = append(items, batch...)
		next = following
	}
	return items, nil
}

// Get fetches a single record.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.client.Get(ctx, r.itemPath(id), &out)
	return out, err
}

// Create posts a new record and returns the stored representation.
func (r *Resource[T]) Create(ctx context.Context, record T) (T, error) {
	var out T
	err := r.client.Post(ctx, r.path, record, &out)
	return out, err
}

// Update replaces a record and returns the stored representation.
func (r *Resource[T]) Update(ctx context.Context, id int64, record T) (T, error) {
	var out T
	err := r.client.Put(ctx, r.itemPath(id), record, &out)
	return out, err
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, r.itemPath(id))
}

func (r *Resource[T]) itemPath(id int64) string {
	if strings.HasSuffix(r.path, "/") {
		return r.path + strconv.FormatInt(id, 10) + "/"
	}
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func decodeList[T any](raw json.RawMessage) ([]T, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, "", nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}
	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, "", err
	}
	body := env.Results
	if len(body) == 0 {
		body = env.Data
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("unexpected list payload")
	}
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, "", err
	}
	next := ""
	if env.Next != nil {
		next = *env.Next
	}
	return items, next, nil
}

// Package search keeps an Elasticsearch copy of the user records for
// free-text lookup by name or email.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-service-layer/internal/domain/entity"
)

const (
	DefaultSize = 20
	opTimeout   = 3 * time.Second
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":        {"type": "keyword"},
      "email":     {"type": "search_as_you_type"},
      "name":      {"type": "search_as_you_type"},
      "createdAt": {"type": "date"},
      "active":    {"type": "boolean"}
    }
  }
}`

type userDoc struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// UserIndex reads and writes user documents in a single Elasticsearch index.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *UserIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("create index", res)
}

func (i *UserIndex) Index(ctx context.Context, u *entity.User) error {
	body, err := json.Marshal(userDoc{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		Active:    u.Active,
	})
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(c),
		i.es.Index.WithDocumentID(u.ID),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("index user", res)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source userDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns users whose name or email matches q, best match first.
func (i *UserIndex) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	if size <= 0 {
		size = DefaultSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"name", "name._2gram", "name._3gram", "email", "email._2gram", "email._3gram"},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
		i.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if err := responseError("search users", res); err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	users := make([]*entity.User, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		d := h.Source
		users = append(users, &entity.User{
			ID:        d.ID,
			Email:     d.Email,
			Name:      d.Name,
			CreatedAt: d.CreatedAt.UTC(),
			Active:    d.Active,
		})
	}
	return users, nil
}

func responseError(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s: %s", op, res.Status(), strings.TrimSpace(string(b)))
}

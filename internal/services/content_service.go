// internal/services/content_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/exetool/store-backend/internal/cms"
)

var ErrUnknownContentType = errors.New("unknown content type")

// contentTypes maps the API's type query parameter to CMS document types.
var contentTypes = map[string]string{
	"product":      "product",
	"post":         "post",
	"storedLink":   "storedLink",
	"siteSettings": "siteSettings",
}

// ContentService proxies admin content operations to the CMS. It holds the
// write token server-side so the browser never sees it.
type ContentService struct {
	cms *cms.Client
}

func NewContentService(client *cms.Client) *ContentService {
	return &ContentService{cms: client}
}

func resolveContentType(typ string) (string, error) {
	docType, ok := contentTypes[typ]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownContentType, typ)
	}
	return docType, nil
}

// List fetches all documents of the given type as raw JSON documents.
func (s *ContentService) List(ctx context.Context, typ string) (json.RawMessage, error) {
	docType, err := resolveContentType(typ)
	if err != nil {
		return nil, err
	}
	var docs json.RawMessage
	groq := fmt.Sprintf(`*[_type == %q] | order(_createdAt desc)`, docType)
	if err := s.cms.Query(ctx, groq, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create inserts a new document. The _type field is set server-side from the
// resolved type; any client-supplied _type is overwritten.
func (s *ContentService) Create(ctx context.Context, typ string, doc map[string]interface{}) ([]byte, error) {
	docType, err := resolveContentType(typ)
	if err != nil {
		return nil, err
	}
	doc["_type"] = docType
	return s.cms.Mutate(ctx, []map[string]interface{}{
		{"create": doc},
	})
}

// Patch applies a partial update to an existing document by id.
func (s *ContentService) Patch(ctx context.Context, typ, id string, fields map[string]interface{}) ([]byte, error) {
	if _, err := resolveContentType(typ); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("document id is required")
	}
	return s.cms.Mutate(ctx, []map[string]interface{}{
		{"patch": map[string]interface{}{
			"id":  id,
			"set": fields,
		}},
	})
}

func (s *ContentService) Delete(ctx context.Context, typ, id string) ([]byte, error) {
	if _, err := resolveContentType(typ); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("document id is required")
	}
	return s.cms.Mutate(ctx, []map[string]interface{}{
		{"delete": map[string]interface{}{"id": id}},
	})
}

// internal/cms/client.go
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/exetool/store-backend/internal/config"
)

// UpstreamError carries the CMS's raw error body so the admin console can
// surface it unchanged.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("cms returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the hosted content store's query, mutation, and asset
// endpoints. Reads use the public dataset; writes require the server-side
// token, which never reaches the browser.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	writeToken string
}

func NewClient(cfg config.CMSConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.sanity.io/%s", cfg.ProjectID, cfg.APIVersion)
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		dataset:    cfg.Dataset,
		writeToken: cfg.WriteToken,
	}
}

// Query runs a GROQ query and decodes the result envelope into out.
func (c *Client) Query(ctx context.Context, groq string, out interface{}) error {
	endpoint := fmt.Sprintf("%s/data/query/%s?query=%s", c.baseURL, c.dataset, url.QueryEscape(groq))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build query request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	envelope := struct {
		Result json.RawMessage `json:"result"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode query envelope: %w", err)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode query result: %w", err)
		}
	}

	return nil
}

// Mutate posts a batch of mutations (create / createOrReplace / patch / delete)
// and returns the raw response body.
func (c *Client) Mutate(ctx context.Context, mutations []map[string]interface{}) ([]byte, error) {
	payload, err := json.Marshal(map[string]interface{}{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutations: %w", err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// UploadAsset pushes image bytes to the asset endpoint and returns the asset
// document id and public URL.
func (c *Client) UploadAsset(ctx context.Context, data []byte, contentType, filename string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/assets/images/%s?filename=%s", c.baseURL, c.dataset, url.QueryEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to build asset request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	body, err := c.do(req)
	if err != nil {
		return "", "", err
	}

	result := struct {
		Document struct {
			ID  string `json:"_id"`
			URL string `json:"url"`
		} `json:"document"`
	}{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", fmt.Errorf("failed to decode asset response: %w", err)
	}

	return result.Document.ID, result.Document.URL, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.writeToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.writeToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// Typed reads used by the public storefront endpoints.

func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	groq := `*[_type == "product"]{_id, title, "slug": slug.current, category, shortDescription, longDescription, features, pricingTiers, mainImage, gallery} | order(title asc)`
	var products []Product
	if err := c.Query(ctx, groq, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	groq := fmt.Sprintf(`*[_type == "product" && slug.current == %q][0]{_id, title, "slug": slug.current, category, shortDescription, longDescription, features, pricingTiers, mainImage, gallery}`, slug)
	var product *Product
	if err := c.Query(ctx, groq, &product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) GetPosts(ctx context.Context) ([]Post, error) {
	groq := `*[_type == "post"]{_id, title, "slug": slug.current, category, excerpt, body, readTime, publishedAt, coverImageUrl, links, author} | order(publishedAt desc)`
	var posts []Post
	if err := c.Query(ctx, groq, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetSiteSettings(ctx context.Context) (*SiteSettings, error) {
	groq := `*[_type == "siteSettings"][0]`
	var settings *SiteSettings
	if err := c.Query(ctx, groq, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *Client) GetStoredLinks(ctx context.Context) ([]StoredLink, error) {
	groq := `*[_type == "storedLink"]{_id, label, url}`
	var links []StoredLink
	if err := c.Query(ctx, groq, &links); err != nil {
		return nil, err
	}
	return links, nil
}

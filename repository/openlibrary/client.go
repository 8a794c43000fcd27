package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/carry-jpg/LibraryDatabase/util/httpx"
)

// Client talks to the OpenLibrary REST API.
type Client interface {
	Search(ctx context.Context, q string, limit int) (map[string]any, error)
	Edition(ctx context.Context, olid string) (map[string]any, error)
	ByISBN(ctx context.Context, isbn string) (map[string]any, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	cache   EditionCache
}

// NewHTTP returns a client for the given base URL. cache may be nil, in
// which case every edition lookup goes to the network.
func NewHTTP(baseURL string, cache EditionCache) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.Client(),
		cache:   cache,
	}
}

func (c *httpClient) Search(ctx context.Context, q string, limit int) (map[string]any, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	u := c.baseURL + "/search.json?q=" + url.QueryEscape(q) + "&limit=" + strconv.Itoa(limit)
	return c.getJSON(ctx, u)
}

func (c *httpClient) Edition(ctx context.Context, olid string) (map[string]any, error) {
	if c.cache != nil {
		if hit, err := c.cache.Get(ctx, olid); err == nil && hit != nil {
			return hit, nil
		}
	}

	u := c.baseURL + "/books/" + url.PathEscape(olid) + ".json"
	data, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		// Cache failures are not the caller's problem.
		_ = c.cache.Set(ctx, olid, data)
	}
	return data, nil
}

var isbnClean = regexp.MustCompile(`[^0-9Xx]`)

func (c *httpClient) ByISBN(ctx context.Context, isbn string) (map[string]any, error) {
	isbn = strings.ToUpper(isbnClean.ReplaceAllString(isbn, ""))
	if isbn == "" {
		return nil, errors.New("isbn is empty/invalid")
	}

	u := c.baseURL + "/api/books?bibkeys=ISBN:" + url.QueryEscape(isbn) + "&format=json&jscmd=data"
	data, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	if entry, ok := data["ISBN:"+isbn].(map[string]any); ok {
		return entry, nil
	}
	return map[string]any{}, nil
}

func (c *httpClient) getJSON(ctx context.Context, u string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openlibrary request failed: %s", resp.Status)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openlibrary invalid JSON: %w", err)
	}
	return out, nil
}

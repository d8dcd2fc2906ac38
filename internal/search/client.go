// Package search queries the Google Custom Search JSON API on behalf of
// bot users. Result shaping per search type (news site restriction,
// youtube scoping, pdf filtering) happens here so callers only pick a
// type and a query.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hinabot/hinabot/internal/boterr"
)

// Search type identifiers accepted by Run and the type picker.
const (
	TypeWeb      = "web"
	TypeImage    = "image"
	TypeNews     = "news"
	TypeVideo    = "video"
	TypeDocument = "document"
)

const (
	maxQueryLen    = 200
	defaultCount   = 5
	newsSiteFilter = "news.google.com OR cnn.com OR bbc.com OR reuters.com"
)

// Item is a single search result.
type Item struct {
	Title       string
	Link        string
	Snippet     string
	DisplayLink string
	Thumbnail   string
}

// Results carries the shaped response for one query.
type Results struct {
	Query        string
	Type         string
	TotalResults string
	SearchTime   float64
	Items        []Item
}

// Client talks to the Custom Search API with a fixed key and engine id.
type Client struct {
	apiBase  string
	apiKey   string
	engineID string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(apiBase, apiKey, engineID string, logger *slog.Logger) *Client {
	return &Client{
		apiBase:  strings.TrimRight(apiBase, "/"),
		apiKey:   apiKey,
		engineID: engineID,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// ValidateQuery rejects queries before any network traffic happens.
func ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("%w: search query is empty", boterr.ErrValidation)
	}
	if len(trimmed) > maxQueryLen {
		return fmt.Errorf("%w: search query exceeds %d characters", boterr.ErrValidation, maxQueryLen)
	}
	return nil
}

// ValidTypes lists the selectable search types in menu order.
func ValidTypes() []string {
	return []string{TypeWeb, TypeImage, TypeNews, TypeVideo, TypeDocument}
}

// Options tunes one query beyond the type preset. Zero values mean the
// defaults: five results, safe search on.
type Options struct {
	Type     string
	Count    int
	Safe     bool
	FileType string
	Site     string
}

// Run executes one search with the default options for the given type.
func (c *Client) Run(ctx context.Context, query, searchType string) (Results, error) {
	return c.Query(ctx, query, Options{Type: searchType, Safe: true})
}

// Query executes one search. The type preset adjusts the outgoing query
// and request parameters; unknown types fall back to a plain web
// search. Explicit FileType and Site override the preset's.
func (c *Client) Query(ctx context.Context, query string, opts Options) (Results, error) {
	if err := ValidateQuery(query); err != nil {
		return Results{}, err
	}
	query = strings.TrimSpace(query)

	count := opts.Count
	if count < 1 || count > 10 {
		count = defaultCount
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("num", fmt.Sprintf("%d", count))
	if opts.Safe {
		params.Set("safe", "active")
	}

	effective := query
	switch opts.Type {
	case TypeImage:
		params.Set("searchType", "image")
	case TypeNews:
		effective = query + " news"
		params.Set("siteSearch", newsSiteFilter)
	case TypeVideo:
		effective = query + " site:youtube.com"
	case TypeDocument:
		params.Set("fileType", "pdf")
	}
	if opts.FileType != "" {
		params.Set("fileType", opts.FileType)
	}
	if opts.Site != "" {
		params.Set("siteSearch", opts.Site)
	}
	params.Set("q", effective)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return Results{}, fmt.Errorf("build search request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return Results{}, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Results{}, statusError(res)
	}

	var payload apiResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Results{}, fmt.Errorf("decode search response: %w", err)
	}

	results := Results{
		Query:        query,
		Type:         opts.Type,
		TotalResults: payload.SearchInformation.TotalResults,
		SearchTime:   payload.SearchInformation.SearchTime,
	}
	for _, item := range payload.Items {
		results.Items = append(results.Items, Item{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
			Thumbnail:   item.thumbnail(),
		})
	}

	c.logger.Debug("search completed",
		"type", opts.Type,
		"results", len(results.Items),
		"total", results.TotalResults)
	return results, nil
}

func statusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	switch res.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: search api status %d", boterr.ErrRemoteQuota, res.StatusCode)
	default:
		return fmt.Errorf("search api status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
}

type apiResponse struct {
	SearchInformation struct {
		TotalResults string  `json:"totalResults"`
		SearchTime   float64 `json:"searchTime"`
	} `json:"searchInformation"`
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
	Image       struct {
		ThumbnailLink string `json:"thumbnailLink"`
	} `json:"image"`
	PageMap struct {
		CSEThumbnail []struct {
			Src string `json:"src"`
		} `json:"cse_thumbnail"`
	} `json:"pagemap"`
}

func (a apiItem) thumbnail() string {
	if a.Image.ThumbnailLink != "" {
		return a.Image.ThumbnailLink
	}
	if len(a.PageMap.CSEThumbnail) > 0 {
		return a.PageMap.CSEThumbnail[0].Src
	}
	return ""
}

package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hinabot/hinabot/internal/boterr"
)

func newTestClient(serverURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(serverURL, "key-1", "engine-1", logger)
}

const sampleResponse = `{
	"searchInformation": {"totalResults": "1200", "searchTime": 0.31},
	"items": [
		{"title": "First", "link": "https://a.example", "snippet": "one", "displayLink": "a.example",
		 "pagemap": {"cse_thumbnail": [{"src": "https://a.example/t.png"}]}},
		{"title": "Second", "link": "https://b.example", "snippet": "two", "displayLink": "b.example"}
	]
}`

func TestRunShapesQueryPerType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		searchType string
		check      func(t *testing.T, q url.Values)
	}{
		{TypeWeb, func(t *testing.T, q url.Values) {
			if q.Get("q") != "go runtime" {
				t.Fatalf("unexpected query: %q", q.Get("q"))
			}
			if q.Get("searchType") != "" || q.Get("fileType") != "" {
				t.Fatalf("web search must not set type filters")
			}
		}},
		{TypeImage, func(t *testing.T, q url.Values) {
			if q.Get("searchType") != "image" {
				t.Fatalf("expected image searchType, got %q", q.Get("searchType"))
			}
		}},
		{TypeNews, func(t *testing.T, q url.Values) {
			if q.Get("q") != "go runtime news" {
				t.Fatalf("unexpected news query: %q", q.Get("q"))
			}
			if !strings.Contains(q.Get("siteSearch"), "reuters.com") {
				t.Fatalf("expected news site restriction, got %q", q.Get("siteSearch"))
			}
		}},
		{TypeVideo, func(t *testing.T, q url.Values) {
			if q.Get("q") != "go runtime site:youtube.com" {
				t.Fatalf("unexpected video query: %q", q.Get("q"))
			}
		}},
		{TypeDocument, func(t *testing.T, q url.Values) {
			if q.Get("fileType") != "pdf" {
				t.Fatalf("expected pdf fileType, got %q", q.Get("fileType"))
			}
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.searchType, func(t *testing.T) {
			t.Parallel()
			var gotQuery url.Values
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(sampleResponse))
			}))
			defer server.Close()

			results, err := newTestClient(server.URL).Run(context.Background(), "go runtime", tc.searchType)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if gotQuery.Get("key") != "key-1" || gotQuery.Get("cx") != "engine-1" {
				t.Fatalf("missing credentials in query: %v", gotQuery)
			}
			if gotQuery.Get("safe") != "active" {
				t.Fatalf("expected safe search, got %q", gotQuery.Get("safe"))
			}
			tc.check(t, gotQuery)
			if len(results.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(results.Items))
			}
			if results.Items[0].Thumbnail != "https://a.example/t.png" {
				t.Fatalf("unexpected thumbnail: %q", results.Items[0].Thumbnail)
			}
			if results.TotalResults != "1200" {
				t.Fatalf("unexpected total: %q", results.TotalResults)
			}
		})
	}
}

func TestRunRejectsBadQueriesBeforeNetwork(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	if _, err := client.Run(context.Background(), "   ", TypeWeb); !errors.Is(err, boterr.ErrValidation) {
		t.Fatalf("expected validation error for blank query, got %v", err)
	}
	long := strings.Repeat("q", maxQueryLen+1)
	if _, err := client.Run(context.Background(), long, TypeWeb); !errors.Is(err, boterr.ErrValidation) {
		t.Fatalf("expected validation error for long query, got %v", err)
	}
	if called {
		t.Fatal("invalid queries must not reach the api")
	}
}

func TestRunMapsQuotaStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		status := status
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := newTestClient(server.URL).Run(context.Background(), "anything", TypeWeb)
		server.Close()
		if !errors.Is(err, boterr.ErrRemoteQuota) {
			t.Fatalf("status %d: expected quota error, got %v", status, err)
		}
	}
}

func TestQueryOptionsOverridePresets(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(), "go runtime", Options{
		Type:     TypeDocument,
		Count:    3,
		FileType: "docx",
		Site:     "example.com",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if gotQuery.Get("num") != "3" {
		t.Fatalf("expected count override, got %q", gotQuery.Get("num"))
	}
	if gotQuery.Get("fileType") != "docx" {
		t.Fatalf("explicit file type must win over the preset, got %q", gotQuery.Get("fileType"))
	}
	if gotQuery.Get("siteSearch") != "example.com" {
		t.Fatalf("expected site restriction, got %q", gotQuery.Get("siteSearch"))
	}
	if gotQuery.Get("safe") != "" {
		t.Fatalf("safe search off by default in Query, got %q", gotQuery.Get("safe"))
	}
}

func TestValidateQueryTrimsBeforeLengthCheck(t *testing.T) {
	t.Parallel()

	padded := "  " + strings.Repeat("q", maxQueryLen) + "  "
	if err := ValidateQuery(padded); err != nil {
		t.Fatalf("trimmed query at the limit should pass: %v", err)
	}
}

package sharepoint

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func normalizeSiteURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func resolveListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return defaultListTitle
	}
	return title
}

// listPath renders the getbytitle resource for a list. Single quotes are
// doubled per OData string literal rules before the title is path-escaped.
func listPath(title string) string {
	literal := strings.ReplaceAll(title, "'", "''")
	return fmt.Sprintf(apiListPath, url.PathEscape(literal))
}

// itemPath is the key suffix appended to the items collection: items(<id>).
func itemPath(id int) string {
	return "(" + strconv.Itoa(id) + ")"
}

// odataQuery joins OData system query options in order. Values are escaped
// only where required so the URLs stay readable in logs.
func odataQuery(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		value := strings.ReplaceAll(url.QueryEscape(pairs[i+1]), "+", "%20")
		value = strings.ReplaceAll(value, "%2C", ",")
		parts = append(parts, pairs[i]+"="+value)
	}
	return strings.Join(parts, "&")
}

func selectQuery() []string {
	return []string{"$select", strings.Join(selectFields, ",")}
}

// parseRetryAfter accepts either delta-seconds or an HTTP date.
func parseRetryAfter(raw string, now time.Time) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

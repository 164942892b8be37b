package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

// Config controls how the client reaches the list REST API.
type Config struct {
	// SiteURL is the absolute site address, e.g. https://contoso.sharepoint.com/sites/games.
	SiteURL     string
	ListTitle   string
	AccessToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Client reads and writes games rows in a single list.
// The site address and HTTP client are fixed at construction.
type Client struct {
	siteURL     string
	listPath    string
	accessToken string
	httpClient  httpDoer
	tracer      trace.Tracer
	now         func() time.Time
}

// NewClient constructs a list client with the provided configuration.
func NewClient(cfg Config) *Client {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Client{
		siteURL:     normalizeSiteURL(cfg.SiteURL),
		listPath:    listPath(resolveListTitle(cfg.ListTitle)),
		accessToken: cfg.AccessToken,
		httpClient:  resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		tracer:      tp.Tracer(tracerName),
		now:         time.Now,
	}
}

// ListGames returns every row in the list using the fixed field projection.
func (c *Client) ListGames(ctx context.Context) (result []games.Game, err error) {
	ctx, span := c.startSpan(ctx, OpList)
	defer func() { endSpan(span, err) }()

	var payload collectionResponse
	url := c.itemsURL("", odataQuery(selectQuery()...))
	if err := c.do(ctx, OpList, IntentReadMinimal, url, "", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Value == nil {
		return []games.Game{}, nil
	}
	return payload.Value, nil
}

// GetGame fetches one row by id with full metadata, so the result carries the etag.
func (c *Client) GetGame(ctx context.Context, id int) (game games.Game, err error) {
	ctx, span := c.startSpan(ctx, OpGet, attribute.Int("game.id", id))
	defer func() { endSpan(span, err) }()

	if err := checkID(OpGet, id); err != nil {
		return games.Game{}, err
	}
	url := c.itemsURL(itemPath(id), odataQuery(selectQuery()...))
	if err := c.do(ctx, OpGet, IntentReadFull, url, "", nil, &game); err != nil {
		return games.Game{}, err
	}
	return game, nil
}

// LatestGame returns the row with the highest id. An empty list yields games.ErrNotFound.
func (c *Client) LatestGame(ctx context.Context) (game games.Game, err error) {
	ctx, span := c.startSpan(ctx, OpLatest)
	defer func() { endSpan(span, err) }()

	query := odataQuery(append(selectQuery(), "$orderby", "Id desc", "$top", "1")...)
	var payload collectionResponse
	if err := c.do(ctx, OpLatest, IntentReadFull, c.itemsURL("", query), "", nil, &payload); err != nil {
		return games.Game{}, err
	}
	if len(payload.Value) == 0 {
		return games.Game{}, fmt.Errorf("sharepoint: %s: list is empty: %w", OpLatest, games.ErrNotFound)
	}
	return payload.Value[0], nil
}

// ItemEntityType resolves the list's item type name, required on create.
func (c *Client) ItemEntityType(ctx context.Context) (name string, err error) {
	ctx, span := c.startSpan(ctx, OpEntityType)
	defer func() { endSpan(span, err) }()

	var payload entityTypeResponse
	url := c.siteURL + c.listPath + "?" + odataQuery("$select", "ListItemEntityTypeFullName")
	if err := c.do(ctx, OpEntityType, IntentReadMinimal, url, "", nil, &payload); err != nil {
		return "", err
	}
	if payload.ListItemEntityTypeFullName == "" {
		return "", &DecodeError{Operation: OpEntityType, Err: errors.New("missing ListItemEntityTypeFullName")}
	}
	return payload.ListItemEntityTypeFullName, nil
}

// CreateGame stamps the entity type on a copy of g and posts it to the list.
// The returned row is whatever the store echoed back; it may be zero-valued
// when the response has no body.
func (c *Client) CreateGame(ctx context.Context, g games.Game) (created games.Game, err error) {
	ctx, span := c.startSpan(ctx, OpCreate)
	defer func() { endSpan(span, err) }()

	entityType, err := c.ItemEntityType(ctx)
	if err != nil {
		return games.Game{}, err
	}

	item := g.WithoutMetadata()
	item.ID = 0
	item.EntityType = entityType
	body, err := json.Marshal(item)
	if err != nil {
		return games.Game{}, fmt.Errorf("sharepoint: %s: encode body: %w", OpCreate, err)
	}

	if err := c.do(ctx, OpCreate, IntentCreate, c.itemsURL("", ""), "", body, &created); err != nil {
		return games.Game{}, err
	}
	return created, nil
}

// UpdateGame merges g into the stored row. g.ETag must hold the token from the
// most recent read; a stale token fails with games.ErrPreconditionFailed.
func (c *Client) UpdateGame(ctx context.Context, g games.Game) (err error) {
	ctx, span := c.startSpan(ctx, OpUpdate, attribute.Int("game.id", g.ID))
	defer func() { endSpan(span, err) }()

	if err := checkID(OpUpdate, g.ID); err != nil {
		return err
	}
	if g.ETag == "" {
		return ErrMissingETag
	}
	item := g.WithoutMetadata()
	item.ID = 0
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("sharepoint: %s: encode body: %w", OpUpdate, err)
	}
	return c.do(ctx, OpUpdate, IntentUpdate, c.itemsURL(itemPath(g.ID), ""), g.ETag, body, nil)
}

// DeleteGame removes the row identified by g.ID guarded by g.ETag. No body is sent.
func (c *Client) DeleteGame(ctx context.Context, g games.Game) (err error) {
	ctx, span := c.startSpan(ctx, OpDelete, attribute.Int("game.id", g.ID))
	defer func() { endSpan(span, err) }()

	if err := checkID(OpDelete, g.ID); err != nil {
		return err
	}
	return c.do(ctx, OpDelete, IntentDelete, c.itemsURL(itemPath(g.ID), ""), g.ETag, nil, nil)
}

// checkID rejects ids the list never assigns without a round trip.
func checkID(op string, id int) error {
	if id <= 0 {
		return fmt.Errorf("sharepoint: %s: invalid id %d: %w", op, id, games.ErrNotFound)
	}
	return nil
}

func (c *Client) itemsURL(suffix, query string) string {
	u := c.siteURL + c.listPath + "/items" + suffix
	if query != "" {
		u += "?" + query
	}
	return u
}

func (c *Client) do(ctx context.Context, op string, intent Intent, url, etag string, body []byte, out any) error {
	headers, err := intent.Headers(etag)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, intent.Method(), url, reader)
	if err != nil {
		return fmt.Errorf("sharepoint: %s: build request: %w", op, err)
	}
	for key, values := range headers {
		req.Header[key] = values
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sharepoint: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if isThrottleStatus(resp.StatusCode) {
			return &ThrottleError{
				Operation:  op,
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
				Message:    strings.TrimSpace(string(excerpt)),
			}
		}
		return &StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) && intent == IntentCreate {
			return nil
		}
		return &DecodeError{Operation: op, Err: err}
	}
	return nil
}

func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("list.operation", op))
	return c.tracer.Start(ctx, "sharepoint."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

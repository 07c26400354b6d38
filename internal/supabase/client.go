// Package supabase wraps the PostgREST client for a Supabase project with a
// per-call timeout, error decoding and paged selects.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
)

// DefaultPageSize matches the hosted database's default max-rows setting.
const DefaultPageSize = 1000

// Error is a PostgREST error answer. Code is the Postgres or PGRST code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s: %s", e.Code, e.Message)
	}
	return "supabase: " + e.Message
}

// postgrest-go reports error answers as "(code) message".
var errorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

func decodeError(err error) error {
	if err == nil {
		return nil
	}
	if m := errorPattern.FindStringSubmatch(err.Error()); m != nil {
		return &Error{Code: m[1], Message: m[2]}
	}
	return err
}

// Client talks to a Supabase project's PostgREST endpoint.
type Client struct {
	rest     *postgrest.Client
	schema   string
	timeout  time.Duration
	pageSize int
}

// Option customizes a Client.
type Option func(*Client)

// WithSchema targets a schema other than public.
func WithSchema(schema string) Option {
	return func(c *Client) { c.schema = schema }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPageSize sets how many rows SelectAll asks for per request.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a client for the project at rawURL authenticated with key.
func New(rawURL, key string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(rawURL) == "" || strings.TrimSpace(key) == "" {
		return nil, errors.New("supabase url and key are required")
	}
	c := &Client{timeout: 15 * time.Second, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(c)
	}

	c.rest = postgrest.NewClient(strings.TrimRight(rawURL, "/")+"/rest/v1", c.schema, map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if c.rest.ClientError != nil {
		return nil, fmt.Errorf("invalid supabase url %q: %w", rawURL, c.rest.ClientError)
	}
	return c, nil
}

// From starts a query on table.
func (c *Client) From(table string) *postgrest.QueryBuilder {
	return c.rest.From(table)
}

// Exec runs q and decodes the rows into out, which must point to a slice.
// A nil out discards the body. The returned count is only set when the
// query asked for one.
func (c *Client) Exec(ctx context.Context, q *postgrest.FilterBuilder, out any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if out == nil {
		_, count, err := q.ExecuteWithContext(ctx)
		return int64(count), decodeError(err)
	}
	count, err := q.ExecuteToWithContext(ctx, out)
	return int64(count), decodeError(err)
}

// SelectAll pages through every row of table kept by filter, ordered by
// orderBy ascending. Offsets advance by the rows actually returned and the
// loop runs until the exact count is reached, so a server max-rows below
// the page size does not truncate the result.
func SelectAll[T any](ctx context.Context, c *Client, table, orderBy string, filter func(*postgrest.FilterBuilder) *postgrest.FilterBuilder) ([]T, error) {
	var all []T
	for {
		q := c.From(table).Select("*", "exact", false)
		if filter != nil {
			q = filter(q)
		}
		q = q.Order(orderBy, &postgrest.OrderOpts{Ascending: true}).
			Range(len(all), len(all)+c.pageSize-1, "")

		var page []T
		total, err := c.Exec(ctx, q, &page)
		if err != nil {
			return nil, fmt.Errorf("fetch %s offset %d: %w", table, len(all), err)
		}
		all = append(all, page...)

		switch {
		case len(page) == 0:
			return all, nil
		case total > 0 && int64(len(all)) >= total:
			return all, nil
		case total == 0 && len(page) < c.pageSize:
			return all, nil
		}
	}
}

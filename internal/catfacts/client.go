// File: internal/catfacts/client.go
package catfacts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/network"
)

// Endpoint paths.
const (
	FactsPath  = "/facts"
	BreedsPath = "/breeds"
	FactPath   = "/fact"
)

// PageQuery selects a page of a list endpoint. Zero values are omitted.
type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// PublicAPI is a typed client for the public cat-facts endpoints.
type PublicAPI struct {
	requests *network.RequestClient
	logger   *zap.Logger
}

// NewPublicAPI binds a client to baseURL.
func NewPublicAPI(baseURL string, client *network.Client, logger *zap.Logger) (*PublicAPI, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("catfacts")
	rc, err := network.NewRequestClient(baseURL, client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cat-facts client: %w", err)
	}
	return &PublicAPI{requests: rc, logger: logger}, nil
}

// Raw exposes the underlying request wrapper for status and header checks.
func (a *PublicAPI) Raw() *network.RequestClient { return a.requests }

// Facts returns one page of facts.
func (a *PublicAPI) Facts(ctx context.Context, q PageQuery) (*FactsPage, error) {
	var page FactsPage
	if err := a.getJSON(ctx, FactsPath, q.values(), &page); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("GET %s: %w", FactsPath, err)
	}
	return &page, nil
}

// Breeds returns one page of breeds.
func (a *PublicAPI) Breeds(ctx context.Context, q PageQuery) (*BreedsPage, error) {
	var page BreedsPage
	if err := a.getJSON(ctx, BreedsPath, q.values(), &page); err != nil {
		return nil, err
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("GET %s: %w", BreedsPath, err)
	}
	return &page, nil
}

// RandomFact returns a random fact, optionally capped at maxLength characters.
func (a *PublicAPI) RandomFact(ctx context.Context, maxLength int) (*Fact, error) {
	query := url.Values{}
	if maxLength > 0 {
		query.Set("max_length", strconv.Itoa(maxLength))
	}

	var fact Fact
	if err := a.getJSON(ctx, FactPath, query, &fact); err != nil {
		return nil, err
	}
	if err := fact.Validate(); err != nil {
		return nil, fmt.Errorf("GET %s: %w", FactPath, err)
	}
	if maxLength > 0 && fact.Length > maxLength {
		return nil, fmt.Errorf("GET %s: %w", FactPath, invalid("length %d exceeds max_length %d", fact.Length, maxLength))
	}
	return &fact, nil
}

func (a *PublicAPI) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := a.requests.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %w", path, invalid("unexpected status %d", resp.StatusCode))
	}
	if err := resp.JSON(v); err != nil {
		return fmt.Errorf("GET %s: %w: %v", path, ErrInvalidResponse, err)
	}
	a.logger.Debug("Decoded response.", zap.String("path", path), zap.Duration("elapsed", resp.Elapsed))
	return nil
}

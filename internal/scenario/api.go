// internal/scenario/api.go
package scenario

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-e2e/internal/catfacts"
)

// ErrCheckFailed is returned when an API response is well formed but does
// not match what the request asked for.
var ErrCheckFailed = errors.New("api check failed")

// APIReport collects what the API suite observed.
type APIReport struct {
	Facts      *catfacts.FactsPage
	Breeds     *catfacts.BreedsPage
	RandomFact *catfacts.Fact
}

// API runs the cat-facts checks.
type API struct {
	client *catfacts.PublicAPI
	logger *zap.Logger
}

// NewAPI wraps a cat-facts client.
func NewAPI(client *catfacts.PublicAPI, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{client: client, logger: logger.Named("scenario.api")}
}

// CheckFacts fetches one page of facts and verifies it honors q.
func (a *API) CheckFacts(ctx context.Context, q catfacts.PageQuery) (*catfacts.FactsPage, error) {
	page, err := a.client.Facts(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.Page > 0 && page.CurrentPage != q.Page {
		return nil, fmt.Errorf("%w: asked for page %d, got %d", ErrCheckFailed, q.Page, page.CurrentPage)
	}
	if q.Limit > 0 {
		if page.PerPage != q.Limit {
			return nil, fmt.Errorf("%w: asked for limit %d, got per_page %d", ErrCheckFailed, q.Limit, page.PerPage)
		}
		if len(page.Data) > q.Limit {
			return nil, fmt.Errorf("%w: %d facts exceed limit %d", ErrCheckFailed, len(page.Data), q.Limit)
		}
	}
	if page.Total > 0 && len(page.Data) == 0 && page.CurrentPage <= page.LastPage {
		return nil, fmt.Errorf("%w: page %d of %d is empty", ErrCheckFailed, page.CurrentPage, page.LastPage)
	}
	a.logger.Info("Facts check passed.",
		zap.Int("page", page.CurrentPage),
		zap.Int("per_page", page.PerPage),
		zap.Int("count", len(page.Data)),
		zap.Int("total", page.Total),
	)
	return page, nil
}

// CheckBreeds fetches one page of breeds and verifies it is non-empty.
func (a *API) CheckBreeds(ctx context.Context, q catfacts.PageQuery) (*catfacts.BreedsPage, error) {
	page, err := a.client.Breeds(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, fmt.Errorf("%w: breeds page %d is empty", ErrCheckFailed, page.CurrentPage)
	}
	a.logger.Info("Breeds check passed.", zap.Int("count", len(page.Data)), zap.Int("total", page.Total))
	return page, nil
}

// CheckRandomFact fetches a random fact no longer than maxLength.
func (a *API) CheckRandomFact(ctx context.Context, maxLength int) (*catfacts.Fact, error) {
	fact, err := a.client.RandomFact(ctx, maxLength)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Random fact check passed.", zap.Int("length", fact.Length))
	return fact, nil
}

// Run executes every check in order and stops at the first failure.
func (a *API) Run(ctx context.Context, q catfacts.PageQuery) (*APIReport, error) {
	var report APIReport
	var err error

	if report.Facts, err = a.CheckFacts(ctx, q); err != nil {
		return nil, fmt.Errorf("facts: %w", err)
	}
	if report.Breeds, err = a.CheckBreeds(ctx, catfacts.PageQuery{}); err != nil {
		return nil, fmt.Errorf("breeds: %w", err)
	}
	if report.RandomFact, err = a.CheckRandomFact(ctx, 140); err != nil {
		return nil, fmt.Errorf("random fact: %w", err)
	}
	return &report, nil
}

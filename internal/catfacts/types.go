// File: internal/catfacts/types.go
package catfacts

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when a payload does not have the expected shape.
var ErrInvalidResponse = errors.New("invalid cat-facts response")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
}

// Fact is a single cat fact.
type Fact struct {
	Fact   string `json:"fact"`
	Length int    `json:"length"`
}

// Validate checks that the fact is non-empty and its length is consistent.
func (f Fact) Validate() error {
	if f.Fact == "" {
		return invalid("fact text is empty")
	}
	if f.Length <= 0 {
		return invalid("fact length must be positive, got %d", f.Length)
	}
	return nil
}

// Breed describes one cat breed.
type Breed struct {
	Breed   string `json:"breed"`
	Country string `json:"country"`
	Origin  string `json:"origin"`
	Coat    string `json:"coat"`
	Pattern string `json:"pattern"`
}

// Validate checks the breed name is present.
func (b Breed) Validate() error {
	if b.Breed == "" {
		return invalid("breed name is empty")
	}
	return nil
}

// PageLink is one entry of the paginator's "links" list.
type PageLink struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// Pagination carries the paginator envelope shared by list endpoints.
type Pagination struct {
	CurrentPage  int        `json:"current_page"`
	FirstPageURL string     `json:"first_page_url"`
	From         *int       `json:"from"`
	LastPage     int        `json:"last_page"`
	LastPageURL  string     `json:"last_page_url"`
	Links        []PageLink `json:"links"`
	NextPageURL  *string    `json:"next_page_url"`
	Path         string     `json:"path"`
	PerPage      int        `json:"per_page"`
	PrevPageURL  *string    `json:"prev_page_url"`
	To           *int       `json:"to"`
	Total        int        `json:"total"`
}

// Validate checks the envelope against the number of items on the page.
func (p Pagination) Validate(items int) error {
	if p.CurrentPage < 1 {
		return invalid("current_page must be >= 1, got %d", p.CurrentPage)
	}
	if p.PerPage < 1 {
		return invalid("per_page must be >= 1, got %d", p.PerPage)
	}
	if p.LastPage < 0 || p.Total < 0 {
		return invalid("negative last_page or total")
	}
	if items > p.PerPage {
		return invalid("page holds %d items, more than per_page %d", items, p.PerPage)
	}
	if p.Path == "" {
		return invalid("path is empty")
	}
	return nil
}

// HasNext reports whether another page follows.
func (p Pagination) HasNext() bool {
	return p.NextPageURL != nil && *p.NextPageURL != ""
}

// FactsPage is the /facts response.
type FactsPage struct {
	Pagination
	Data []Fact `json:"data"`
}

// Validate checks the envelope and every fact.
func (p FactsPage) Validate() error {
	if err := p.Pagination.Validate(len(p.Data)); err != nil {
		return err
	}
	for i, f := range p.Data {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return nil
}

// BreedsPage is the /breeds response.
type BreedsPage struct {
	Pagination
	Data []Breed `json:"data"`
}

// Validate checks the envelope and every breed.
func (p BreedsPage) Validate() error {
	if err := p.Pagination.Validate(len(p.Data)); err != nil {
		return err
	}
	for i, b := range p.Data {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return nil
}

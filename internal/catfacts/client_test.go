// internal/catfacts/client_test.go
package catfacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scalpel-e2e/internal/network"
)

const factsPageJSON = `{
  "current_page": 2,
  "data": [
    {"fact": "Cats have five toes on their front paws.", "length": 40},
    {"fact": "A group of cats is called a clowder.", "length": 36}
  ],
  "first_page_url": "https://catfact.ninja/facts?page=1",
  "from": 3,
  "last_page": 17,
  "last_page_url": "https://catfact.ninja/facts?page=17",
  "links": [
    {"url": null, "label": "Previous", "active": false},
    {"url": "https://catfact.ninja/facts?page=2", "label": "2", "active": true}
  ],
  "next_page_url": "https://catfact.ninja/facts?page=3",
  "path": "https://catfact.ninja/facts",
  "per_page": 2,
  "prev_page_url": "https://catfact.ninja/facts?page=1",
  "to": 4,
  "total": 332
}`

const breedsPageJSON = `{
  "current_page": 1,
  "data": [
    {"breed": "Abyssinian", "country": "Ethiopia", "origin": "Natural/Standard", "coat": "Short", "pattern": "Ticked"}
  ],
  "first_page_url": "https://catfact.ninja/breeds?page=1",
  "from": 1,
  "last_page": 4,
  "last_page_url": "https://catfact.ninja/breeds?page=4",
  "links": [],
  "next_page_url": null,
  "path": "https://catfact.ninja/breeds",
  "per_page": 25,
  "prev_page_url": null,
  "to": 1,
  "total": 98
}`

// newTestAPI serves handler and returns a client bound to it.
func newTestAPI(t *testing.T, handler http.HandlerFunc) *PublicAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := network.NewClient(nil)
	t.Cleanup(client.CloseIdleConnections)

	api, err := NewPublicAPI(server.URL, client, zaptest.NewLogger(t))
	require.NoError(t, err)
	return api
}

func TestFacts_QueryAndDecode(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, FactsPath, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, factsPageJSON)
	})

	page, err := api.Facts(context.Background(), PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 332, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 36, page.Data[1].Length)
	assert.True(t, page.HasNext())
	require.NotNil(t, page.From)
	assert.Equal(t, 3, *page.From)
	assert.Nil(t, page.Links[0].URL)
}

func TestFacts_OmitsZeroQuery(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		fmt.Fprint(w, factsPageJSON)
	})

	_, err := api.Facts(context.Background(), PageQuery{})
	require.NoError(t, err)
}

func TestBreeds(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, BreedsPath, r.URL.Path)
		fmt.Fprint(w, breedsPageJSON)
	})

	page, err := api.Breeds(context.Background(), PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Abyssinian", page.Data[0].Breed)
	assert.False(t, page.HasNext())
}

func TestRandomFact(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, FactPath, r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("max_length"))
		fmt.Fprint(w, `{"fact":"Cats purr.","length":10}`)
	})

	fact, err := api.RandomFact(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, "Cats purr.", fact.Fact)
}

func TestRandomFact_ExceedsMaxLength(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fact":"A rather long fact about cats.","length":31}`)
	})

	_, err := api.RandomFact(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestInvalidResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200 status", http.StatusInternalServerError, `{}`},
		{"malformed json", http.StatusOK, `{"current_page":`},
		{"zero per_page", http.StatusOK, `{"current_page":1,"per_page":0,"path":"x","data":[]}`},
		{"empty fact", http.StatusOK, `{"current_page":1,"per_page":5,"path":"x","data":[{"fact":"","length":0}]}`},
		{"more items than per_page", http.StatusOK, `{"current_page":1,"per_page":1,"path":"x","data":[{"fact":"a","length":1},{"fact":"b","length":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := api.Facts(context.Background(), PageQuery{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestNewPublicAPI_InvalidBaseURL(t *testing.T) {
	_, err := NewPublicAPI("catfact.ninja", nil, nil)
	require.Error(t, err)
}

package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
)

func newSearchForTest(baseURL string) *Service {
	return NewService(&config.AppConfig{
		GoogleMapsAPIKey: "maps-key",
		PlacesBaseURL:    baseURL,
	})
}

func TestSearchPlaces(t *testing.T) {
	var gotPath, gotKey, gotMask string
	var gotPayload map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{
			"places": [
				{
					"id": "place-1",
					"displayName": {"text": "Acme Plumbing"},
					"formattedAddress": "1 Main St, Austin, TX",
					"internationalPhoneNumber": "+1 555-123-4567",
					"rating": 4.6,
					"types": ["plumber"]
				}
			]
		}`))
	}))
	defer ts.Close()

	svc := newSearchForTest(ts.URL)
	places, err := svc.SearchPlaces(context.Background(), "plumbers", "Austin")
	require.NoError(t, err)
	require.Len(t, places, 1)

	place := places[0]
	require.Equal(t, "place-1", place.PlaceID)
	require.Equal(t, "Acme Plumbing", place.Name)
	require.Equal(t, "1 Main St, Austin, TX", place.Address)
	require.Equal(t, "+1 555-123-4567", place.Phone)
	require.InDelta(t, 4.6, place.Rating, 0.001)

	require.Equal(t, "/places:searchText", gotPath)
	require.Equal(t, "maps-key", gotKey)
	require.Contains(t, gotMask, "places.displayName")
	require.Equal(t, "plumbers in Austin", gotPayload["textQuery"])
}

func TestSearchPlaces_NoLocation(t *testing.T) {
	var gotPayload map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	svc := newSearchForTest(ts.URL)
	places, err := svc.SearchPlaces(context.Background(), "plumbers", "")
	require.NoError(t, err)
	require.Empty(t, places)
	require.Equal(t, "plumbers", gotPayload["textQuery"])
}

func TestSearchPlaces_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "API key invalid"}}`))
	}))
	defer ts.Close()

	svc := newSearchForTest(ts.URL)
	_, err := svc.SearchPlaces(context.Background(), "plumbers", "Austin")
	require.Error(t, err)

	var providerErr *domain.ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, "places", providerErr.Provider)
	require.Equal(t, http.StatusForbidden, providerErr.StatusCode)
}

func TestGetPlaceDetails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/places/place-1", r.URL.Path)
		w.Write([]byte(`{
			"id": "place-1",
			"displayName": {"text": "Acme Plumbing"},
			"websiteUri": "https://acme.test"
		}`))
	}))
	defer ts.Close()

	svc := newSearchForTest(ts.URL)
	place, err := svc.GetPlaceDetails(context.Background(), "place-1")
	require.NoError(t, err)
	require.Equal(t, "place-1", place.PlaceID)
	require.Equal(t, "Acme Plumbing", place.Name)
	require.Equal(t, "https://acme.test", place.Website)
}

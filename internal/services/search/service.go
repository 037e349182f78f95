package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vasudevan-kross/calling-agent-app/internal/config"
	"github.com/vasudevan-kross/calling-agent-app/internal/domain"
)

const defaultPlacesBaseURL = "https://places.googleapis.com/v1"

// Place is one business result from a Places search
type Place struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Phone   string   `json:"phone,omitempty"`
	Rating  float64  `json:"rating,omitempty"`
	Types   []string `json:"types,omitempty"`
	Website string   `json:"website,omitempty"`
}

// Service is a pass-through client for the Google Places API (New)
type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewService creates a new Places search client
func NewService(cfg *config.AppConfig) *Service {
	baseURL := cfg.PlacesBaseURL
	if baseURL == "" {
		baseURL = defaultPlacesBaseURL
	}
	return &Service{
		apiKey:  cfg.GoogleMapsAPIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchPlaces runs a text search, optionally scoped to a location
func (s *Service) SearchPlaces(ctx context.Context, query, location string) ([]Place, error) {
	textQuery := query
	if location != "" {
		textQuery = fmt.Sprintf("%s in %s", query, location)
	}

	payload := map[string]interface{}{
		"textQuery":    textQuery,
		"languageCode": "en",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/places:searchText", strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)
	req.Header.Set("X-Goog-FieldMask", strings.Join([]string{
		"places.id",
		"places.displayName",
		"places.formattedAddress",
		"places.internationalPhoneNumber",
		"places.rating",
		"places.types",
	}, ","))

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var result struct {
		Places []placePayload `json:"places"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	places := make([]Place, 0, len(result.Places))
	for _, p := range result.Places {
		places = append(places, p.toPlace())
	}
	return places, nil
}

// GetPlaceDetails fetches detailed information about one place
func (s *Service) GetPlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/places/"+placeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create details request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.apiKey)
	req.Header.Set("X-Goog-FieldMask", strings.Join([]string{
		"id",
		"displayName",
		"formattedAddress",
		"internationalPhoneNumber",
		"rating",
		"types",
		"websiteUri",
	}, ","))

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var payload placePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}

	place := payload.toPlace()
	return &place, nil
}

// do executes a request, converting non-2xx responses into ProviderError
func (s *Service) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "places", Operation: "search", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "places", Operation: "search", Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, &domain.ProviderError{Provider: "places", Operation: "search", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// placePayload mirrors the Places API response shape
type placePayload struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress         string   `json:"formattedAddress"`
	InternationalPhoneNumber string   `json:"internationalPhoneNumber"`
	Rating                   float64  `json:"rating"`
	Types                    []string `json:"types"`
	WebsiteURI               string   `json:"websiteUri"`
}

func (p placePayload) toPlace() Place {
	return Place{
		PlaceID: p.ID,
		Name:    p.DisplayName.Text,
		Address: p.FormattedAddress,
		Phone:   p.InternationalPhoneNumber,
		Rating:  p.Rating,
		Types:   p.Types,
		Website: p.WebsiteURI,
	}
}

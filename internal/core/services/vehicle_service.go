package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VehicleService fetches vehicle descriptors (brand, model, type) from the
// external catalog API. Used to fill in finances created without descriptors;
// failures are tolerated by the caller.
type VehicleService struct {
	url    string
	client *http.Client
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(url string) *VehicleService {
	return &VehicleService{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Specs fetches the available vehicle descriptors
func (s *VehicleService) Specs(ctx context.Context) (*VehicleSpecs, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vehicle API returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var specs VehicleSpecs
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("malformed vehicle API response: %w", err)
	}
	return &specs, nil
}

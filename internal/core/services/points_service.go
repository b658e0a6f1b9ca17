package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PointsService notifies the external rewards microservice when a contract is
// signed. The response body is ignored beyond its status code; callers treat
// every failure as best-effort.
type PointsService struct {
	baseURL string
	client  *http.Client
}

// NewPointsService creates a new points service
func NewPointsService(baseURL string) *PointsService {
	return &PointsService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ContractCompleted posts the completed-contract event to the rewards service
func (s *PointsService) ContractCompleted(ctx context.Context, event ContractCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/contracts/completed", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("points service returned status %d", resp.StatusCode)
	}
	return nil
}

package channels

//go:generate go run go.uber.org/mock/mockgen -source=./channels.go -destination=./mocks/channels_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"villa/config"
)

// PushRequest carries the booking fields a platform needs to block out dates.
type PushRequest struct {
	BookingID  string    `json:"booking_id"`
	RoomName   string    `json:"room_name"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
}

// Channel pushes a local booking to one external platform. PushBooking
// returns the platform's reservation identifier on success.
type Channel interface {
	Name() string
	Configured() bool
	PushBooking(ctx context.Context, req PushRequest) (externalID string, err error)
}

// All returns every platform client, configured or not. Callers filter
// on Configured before pushing.
func All(cfg *config.Config) []Channel {
	return []Channel{
		NewBookingCom(cfg),
		NewAirbnb(cfg),
		NewTripadvisor(cfg),
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: time.Duration(cfg.Channels.PushTimeoutSeconds) * time.Second}
}

type pushPayload struct {
	PropertyID string `json:"property_id,omitempty"`
	ListingID  string `json:"listing_id,omitempty"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	Reference  string `json:"reference"`
}

type pushResult struct {
	ReservationID string `json:"reservation_id"`
	ID            string `json:"id"`
	Message       string `json:"message"`
}

// postReservation sends the payload to the platform endpoint with bearer
// auth and decodes the reservation identifier from the response.
func postReservation(ctx context.Context, hc *http.Client, apiURL, apiKey string, payload pushPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reservation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build reservation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("reservation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read reservation response: %w", err)
	}

	var result pushResult
	if resp.StatusCode >= http.StatusBadRequest {
		_ = json.Unmarshal(raw, &result)
		if result.Message != "" {
			return "", fmt.Errorf("reservation rejected: %s (status=%d)", result.Message, resp.StatusCode)
		}

		return "", fmt.Errorf("reservation rejected (status=%d)", resp.StatusCode)
	}

	if err = json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to decode reservation response: %w", err)
	}

	if result.ReservationID != "" {
		return result.ReservationID, nil
	}

	if result.ID != "" {
		return result.ID, nil
	}

	return "", fmt.Errorf("reservation response missing identifier (status=%d)", resp.StatusCode)
}

package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared/validator"
)

type bookingRequest struct {
	RoomID     string `json:"room_id"     validate:"required"`
	GuestName  string `json:"guest_name"  validate:"required,max=100"`
	GuestEmail string `json:"guest_email" validate:"required,email,max=100"`
	Guests     int    `json:"guests"      validate:"required,min=1"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid body",
			body: `{"room_id":"r1","guest_name":"Ana","guest_email":"ana@example.com","guests":2}`,
		},
		{
			name:    "missing required field",
			body:    `{"guest_name":"Ana","guest_email":"ana@example.com","guests":2}`,
			wantErr: "RoomID is required",
		},
		{
			name:    "invalid email",
			body:    `{"room_id":"r1","guest_name":"Ana","guest_email":"nope","guests":2}`,
			wantErr: "GuestEmail must be a valid email address",
		},
		{
			name:    "guests below minimum",
			body:    `{"room_id":"r1","guest_name":"Ana","guest_email":"ana@example.com","guests":0}`,
			wantErr: "Guests is required",
		},
		{
			name:    "malformed json",
			body:    `{"room_id":`,
			wantErr: "failed to decode request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingRequest{}
			err := validator.Validate(strings.NewReader(tt.body), &req)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("https://example.com/cal.ics", "url"))
	assert.Error(t, validator.ValidateVar("not a url", "url"))
}

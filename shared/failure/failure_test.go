package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared/failure"
)

func TestFailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "bad request", err: failure.BadRequestFromString("bad dates"), wantCode: http.StatusBadRequest},
		{name: "unauthorized", err: failure.Unauthorized("no token"), wantCode: http.StatusUnauthorized},
		{name: "not found", err: failure.NotFound("booking not found"), wantCode: http.StatusNotFound},
		{name: "conflict", err: failure.Conflict("dates unavailable"), wantCode: http.StatusConflict},
		{name: "forbidden", err: failure.Forbidden("nope"), wantCode: http.StatusForbidden},
		{name: "plain error maps to 500", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
		})
	}
}

func TestGetCodeWrapped(t *testing.T) {
	err := fmt.Errorf("creating booking: %w", failure.Conflict("dates unavailable"))

	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestConflictWithDetails(t *testing.T) {
	type conflictRange struct {
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
	}

	detail := conflictRange{CheckIn: "2025-07-01", CheckOut: "2025-07-05"}
	err := failure.ConflictWithDetails("dates unavailable", detail)

	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, detail, failure.GetDetails(err))
	assert.Nil(t, failure.GetDetails(errors.New("boom")))
}

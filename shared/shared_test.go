package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared"
	"villa/shared/dto"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{name: "exact pages", total: 20, limit: 10, want: 2},
		{name: "partial last page", total: 21, limit: 10, want: 3},
		{name: "no data", total: 0, limit: 10, want: 1},
		{name: "no limit", total: 20, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "booking:get", shared.BuildCacheKey("booking:get"))
	assert.Equal(t, "booking:get:abc", shared.BuildCacheKey("booking:get", "abc"))
	assert.Equal(t, "limiter:1.2.3.4:ua", shared.BuildCacheKey("limiter", "1.2.3.4", "ua"))
}

func TestBuildCacheKeyWithQueryIsStable(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: "r1"},
		},
	}

	first := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("booking:gets", params, filter)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("booking:gets", dto.QueryParams{Page: 2, Limit: 10}, filter))
}

func TestFilterActiveByRoom(t *testing.T) {
	group := shared.FilterActiveByRoom("r1", "room_id", "status", "room_bookings", []string{"pending", "confirmed"})

	where, args := group.GetWhereClause()

	assert.Contains(t, where, "room_bookings.room_id = :room_id")
	assert.Contains(t, where, "room_bookings.status IN")
	assert.Equal(t, "r1", args["room_id"])
}

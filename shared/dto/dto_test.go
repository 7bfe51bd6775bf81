package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared/dto"
)

func TestFilterGetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: "r1", Table: "room_bookings"},
			wantWhere: "room_bookings.room_id = :room_id",
			wantArgs:  map[string]any{"room_id": "r1"},
		},
		{
			name:      "strict less for overlap lower bound",
			filter:    dto.Filter{Field: "check_in", Operator: dto.FilterOperatorLess, Value: "2025-07-05", Table: "room_bookings"},
			wantWhere: "room_bookings.check_in < :check_in",
			wantArgs:  map[string]any{"check_in": "2025-07-05"},
		},
		{
			name:      "strict greater for overlap upper bound",
			filter:    dto.Filter{Field: "check_out", Operator: dto.FilterOperatorGreater, Value: "2025-07-01", Table: "room_bookings"},
			wantWhere: "room_bookings.check_out > :check_out",
			wantArgs:  map[string]any{"check_out": "2025-07-01"},
		},
		{
			name:      "in with slice",
			filter:    dto.Filter{Field: "status", Operator: dto.FilterOperatorIn, Value: []string{"pending", "confirmed"}},
			wantWhere: "status IN (:status_0, :status_1) ",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "confirmed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroupGetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "room_id", Operator: dto.FilterOperatorEq, Value: "r1"},
			dto.Filter{Field: "status", Operator: dto.FilterOperatorIn, Value: []string{"pending", "confirmed"}},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(room_id = :room_id AND status IN (:status_0, :status_1) )", where)
	assert.Len(t, args, 3)
}

func TestFilterGroupEmpty(t *testing.T) {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	where, args := group.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}

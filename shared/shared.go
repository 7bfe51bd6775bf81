package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"villa/shared/cache"
	"villa/shared/constant"
	"villa/shared/dto"
	"villa/shared/timezone"

	"github.com/rs/zerolog/log"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func ConvertStringToInt(value string) (int, error) {
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("converting string to int: %w", err)
	}

	return intValue, nil
}

func ConvertStringToFloat(value string) (float64, error) {
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("converting string to float: %w", err)
	}

	return floatValue, nil
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// BuildCacheKey joins the prefix and parts into a colon-separated cache key.
func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return prefix + ":" + strings.Join(parts, ":")
}

// BuildCacheKeyWithQuery derives a cache key from the query params and filter,
// hashed so arbitrary filter combinations produce bounded key lengths.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	payload, err := json.Marshal(map[string]any{
		"params": params,
		"where":  where,
		"args":   args,
	})
	if err != nil {
		return prefix
	}

	sum := sha256.Sum256(payload)

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:8]))
}

// InvalidateCaches clears every cache entry under the given prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// TransformFields converts the non-zero fields of a struct into a map of updated fields.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterActiveByRoom selects the bookings of a room that participate in
// conflict detection, i.e. the given statuses (pending and confirmed).
func FilterActiveByRoom(roomID, fieldRoomID, fieldStatus, table string, statuses []string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{
				Field:    fieldRoomID,
				Value:    roomID,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
			dto.Filter{
				Field:    fieldStatus,
				Value:    statuses,
				Operator: dto.FilterOperatorIn,
				Table:    table,
			},
		},
	}
}

// FilterOverlapping narrows FilterActiveByRoom to bookings whose half-open
// date range intersects [start, end): check_in < end AND check_out > start.
func FilterOverlapping(roomID, fieldRoomID, fieldStatus, fieldCheckIn, fieldCheckOut, table string, statuses []string, start, end time.Time) dto.FilterGroup {
	group := FilterActiveByRoom(roomID, fieldRoomID, fieldStatus, table, statuses)

	group.Filters = append(group.Filters,
		dto.Filter{
			ArgName:  "overlap_end",
			Field:    fieldCheckIn,
			Value:    end,
			Operator: dto.FilterOperatorLess,
			Table:    table,
		},
		dto.Filter{
			ArgName:  "overlap_start",
			Field:    fieldCheckOut,
			Value:    start,
			Operator: dto.FilterOperatorGreater,
			Table:    table,
		},
	)

	return group
}

func BuildSortParams(sortBy, sortDir string) dto.QueryParams {
	return dto.QueryParams{SortBy: sortBy, SortDir: sortDir}
}


package dto

import (
	bookingDto "villa/internal/domains/booking/model/dto"
)

// SyncResult reports the outcome of one outbound push. Platforms maps
// platform name to success; the aggregate external_status on the booking
// only records that an attempt was made.
type SyncResult struct {
	BookingID string                     `json:"booking_id"`
	Success   bool                       `json:"success"`
	Platforms map[string]bool            `json:"platforms"`
	Booking   bookingDto.BookingResponse `json:"booking"`
}

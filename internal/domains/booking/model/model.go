package model

import (
	"time"

	"villa/shared/constant"
	"villa/shared/model"
)

const (
	TableName  = "room_bookings"
	EntityName = "booking"

	FieldID             = "id"
	FieldRoomID         = "room_id"
	FieldGuestName      = "guest_name"
	FieldGuestEmail     = "guest_email"
	FieldGuestPhone     = "guest_phone"
	FieldCheckIn        = "check_in"
	FieldCheckOut       = "check_out"
	FieldGuests         = "guests"
	FieldStatus         = "status"
	FieldExternalStatus = "external_status"
	FieldBookingComID   = "booking_com_id"
	FieldAirbnbID       = "airbnb_id"
	FieldTripadvisorID  = "tripadvisor_id"
)

// Booking status. Only pending and confirmed bookings block dates;
// cancelled ones are kept for history.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// External status records provenance and sync state, independent of the
// booking status. "synced" means a push attempt was made, not that every
// platform accepted it.
const (
	ExternalStatusUnsynced = "unsynced"
	ExternalStatusSynced   = "synced"
	ExternalStatusImported = "imported"
)

// ActiveStatuses are the statuses that participate in conflict detection.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

type Booking struct {
	ID                   string     `db:"id"`
	RoomID               string     `db:"room_id"`
	GuestName            string     `db:"guest_name"`
	GuestEmail           string     `db:"guest_email"`
	GuestPhone           string     `db:"guest_phone"`
	CheckIn              time.Time  `db:"check_in"`
	CheckOut             time.Time  `db:"check_out"`
	Guests               int        `db:"guests"`
	Status               string     `db:"status"`
	SpecialRequests      string     `db:"special_requests"`
	BookingComID         string     `db:"booking_com_id"`
	AirbnbID             string     `db:"airbnb_id"`
	TripadvisorID        string     `db:"tripadvisor_id"`
	ExternalStatus       string     `db:"external_status"`
	ConfirmedAt          *time.Time `db:"confirmed_at"`
	ConfirmationMethod   string     `db:"confirmation_method"`
	ConfirmationLanguage string     `db:"confirmation_language"`
	model.Metadata
}

// Active reports whether the booking blocks its dates.
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// ExternalID returns the stored platform identifier for the given
// platform name, if any.
func (b *Booking) ExternalID(platform string) string {
	switch platform {
	case constant.PlatformBookingCom:
		return b.BookingComID
	case constant.PlatformAirbnb:
		return b.AirbnbID
	case constant.PlatformTripadvisor:
		return b.TripadvisorID
	}

	return constant.Empty
}

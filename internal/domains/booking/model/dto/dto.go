package dto

import (
	"villa/internal/domains/booking/model"
	"villa/shared"
	"villa/shared/constant"
	"villa/shared/daterange"
	gDto "villa/shared/dto"
	gModel "villa/shared/model"
	"villa/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	RoomID          string `json:"room_id"          validate:"required"`
	GuestName       string `json:"guest_name"       validate:"required,max=100"`
	GuestEmail      string `json:"guest_email"      validate:"required,email,max=100"`
	GuestPhone      string `json:"guest_phone"      validate:"required,max=30"`
	CheckIn         string `json:"check_in"         validate:"required"`
	CheckOut        string `json:"check_out"        validate:"required"`
	Guests          int    `json:"guests"           validate:"required,min=1"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=2000"`
}

// Range parses and normalizes the requested stay. Check-out day is not
// occupied, so back-to-back stays never collide.
func (c *CreateBookingRequest) Range() (daterange.Range, error) {
	return daterange.Parse(c.CheckIn, c.CheckOut)
}

func (c *CreateBookingRequest) ToModel(user string, rng daterange.Range) model.Booking {
	return model.Booking{
		ID:              uuid.NewString(),
		RoomID:          c.RoomID,
		GuestName:       c.GuestName,
		GuestEmail:      c.GuestEmail,
		GuestPhone:      c.GuestPhone,
		CheckIn:         rng.CheckIn,
		CheckOut:        rng.CheckOut,
		Guests:          c.Guests,
		Status:          model.StatusPending,
		SpecialRequests: c.SpecialRequests,
		ExternalStatus:  model.ExternalStatusUnsynced,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateBookingRequest struct {
	GuestName            string `db:"guest_name"            json:"guest_name"            validate:"omitempty,max=100"`
	GuestEmail           string `db:"guest_email"           json:"guest_email"           validate:"omitempty,email,max=100"`
	GuestPhone           string `db:"guest_phone"           json:"guest_phone"           validate:"omitempty,max=30"`
	Guests               *int   `db:"guests"                json:"guests"                validate:"omitempty,min=1"`
	SpecialRequests      string `db:"special_requests"      json:"special_requests"      validate:"omitempty,max=2000"`
	Status               string `db:"status"                json:"status"                validate:"omitempty,oneof=pending confirmed cancelled"`
	ConfirmationMethod   string `db:"confirmation_method"   json:"confirmation_method"   validate:"omitempty,max=50"`
	ConfirmationLanguage string `db:"confirmation_language" json:"confirmation_language" validate:"omitempty,max=10"`
}

type AvailabilityQuery struct {
	CheckIn  string `json:"check_in"  validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

func (q *AvailabilityQuery) Range() (daterange.Range, error) {
	return daterange.Parse(q.CheckIn, q.CheckOut)
}

type BookedRange struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Status   string `json:"status"`
}

func NewBookedRange(b model.Booking) BookedRange {
	return BookedRange{
		CheckIn:  b.CheckIn.Format(constant.DateOnlyFormat),
		CheckOut: b.CheckOut.Format(constant.DateOnlyFormat),
		Status:   b.Status,
	}
}

type AvailabilityResponse struct {
	Available      bool          `json:"available"`
	Conflicts      []BookedRange `json:"conflicts,omitempty"`
	NextBookedDate string        `json:"next_booked_date,omitempty"`
}

type BookedDatesResponse struct {
	RoomID string        `json:"room_id"`
	Dates  []BookedRange `json:"dates"`
}

func (r *BookedDatesResponse) FromModels(roomID string, models []model.Booking) {
	r.RoomID = roomID

	r.Dates = make([]BookedRange, len(models))
	for i, mod := range models {
		r.Dates[i] = NewBookedRange(mod)
	}
}

type BookingResponse struct {
	ID                   string `json:"id"`
	RoomID               string `json:"room_id"`
	GuestName            string `json:"guest_name"`
	GuestEmail           string `json:"guest_email"`
	GuestPhone           string `json:"guest_phone"`
	CheckIn              string `json:"check_in"`
	CheckOut             string `json:"check_out"`
	Guests               int    `json:"guests"`
	Status               string `json:"status"`
	SpecialRequests      string `json:"special_requests,omitempty"`
	BookingComID         string `json:"booking_com_id,omitempty"`
	AirbnbID             string `json:"airbnb_id,omitempty"`
	TripadvisorID        string `json:"tripadvisor_id,omitempty"`
	ExternalStatus       string `json:"external_status"`
	ConfirmedAt          string `json:"confirmed_at,omitempty"`
	ConfirmationMethod   string `json:"confirmation_method,omitempty"`
	ConfirmationLanguage string `json:"confirmation_language,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.GuestName = model.GuestName
	r.GuestEmail = model.GuestEmail
	r.GuestPhone = model.GuestPhone
	r.CheckIn = model.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = model.CheckOut.Format(constant.DateOnlyFormat)
	r.Guests = model.Guests
	r.Status = model.Status
	r.SpecialRequests = model.SpecialRequests
	r.BookingComID = model.BookingComID
	r.AirbnbID = model.AirbnbID
	r.TripadvisorID = model.TripadvisorID
	r.ExternalStatus = model.ExternalStatus
	if model.ConfirmedAt != nil {
		r.ConfirmedAt = timezone.Format(*model.ConfirmedAt, constant.DateFormat)
	}
	r.ConfirmationMethod = model.ConfirmationMethod
	r.ConfirmationLanguage = model.ConfirmationLanguage
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

package channels

import (
	"context"
	"net/http"

	"villa/config"
	"villa/shared/constant"
)

type bookingCom struct {
	config *config.Config
	hc     *http.Client
}

// NewBookingCom creates the Booking.com channel client.
func NewBookingCom(cfg *config.Config) Channel {
	return &bookingCom{
		config: cfg,
		hc:     newHTTPClient(cfg),
	}
}

func (c *bookingCom) Name() string {
	return constant.PlatformBookingCom
}

func (c *bookingCom) Configured() bool {
	return c.config.Channels.BookingCom.APIKey != "" && c.config.Channels.BookingCom.APIURL != ""
}

func (c *bookingCom) PushBooking(ctx context.Context, req PushRequest) (string, error) {
	payload := pushPayload{
		PropertyID: c.config.Channels.BookingCom.PropertyID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		CheckIn:    req.CheckIn.Format(constant.DateOnlyFormat),
		CheckOut:   req.CheckOut.Format(constant.DateOnlyFormat),
		Guests:     req.Guests,
		Reference:  req.BookingID,
	}

	return postReservation(ctx, c.hc, c.config.Channels.BookingCom.APIURL, c.config.Channels.BookingCom.APIKey, payload)
}

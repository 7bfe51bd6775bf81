package channels

import (
	"context"
	"net/http"

	"villa/config"
	"villa/shared/constant"
)

type airbnb struct {
	config *config.Config
	hc     *http.Client
}

// NewAirbnb creates the Airbnb channel client.
func NewAirbnb(cfg *config.Config) Channel {
	return &airbnb{
		config: cfg,
		hc:     newHTTPClient(cfg),
	}
}

func (c *airbnb) Name() string {
	return constant.PlatformAirbnb
}

func (c *airbnb) Configured() bool {
	return c.config.Channels.Airbnb.APIKey != "" && c.config.Channels.Airbnb.APIURL != ""
}

func (c *airbnb) PushBooking(ctx context.Context, req PushRequest) (string, error) {
	payload := pushPayload{
		ListingID:  c.config.Channels.Airbnb.ListingID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		CheckIn:    req.CheckIn.Format(constant.DateOnlyFormat),
		CheckOut:   req.CheckOut.Format(constant.DateOnlyFormat),
		Guests:     req.Guests,
		Reference:  req.BookingID,
	}

	return postReservation(ctx, c.hc, c.config.Channels.Airbnb.APIURL, c.config.Channels.Airbnb.APIKey, payload)
}

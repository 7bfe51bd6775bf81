package channels

import (
	"context"
	"net/http"

	"villa/config"
	"villa/shared/constant"
)

type tripadvisor struct {
	config *config.Config
	hc     *http.Client
}

// NewTripadvisor creates the Tripadvisor channel client.
func NewTripadvisor(cfg *config.Config) Channel {
	return &tripadvisor{
		config: cfg,
		hc:     newHTTPClient(cfg),
	}
}

func (c *tripadvisor) Name() string {
	return constant.PlatformTripadvisor
}

func (c *tripadvisor) Configured() bool {
	return c.config.Channels.Tripadvisor.APIKey != "" && c.config.Channels.Tripadvisor.APIURL != ""
}

func (c *tripadvisor) PushBooking(ctx context.Context, req PushRequest) (string, error) {
	payload := pushPayload{
		PropertyID: c.config.Channels.Tripadvisor.PropertyID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		CheckIn:    req.CheckIn.Format(constant.DateOnlyFormat),
		CheckOut:   req.CheckOut.Format(constant.DateOnlyFormat),
		Guests:     req.Guests,
		Reference:  req.BookingID,
	}

	return postReservation(ctx, c.hc, c.config.Channels.Tripadvisor.APIURL, c.config.Channels.Tripadvisor.APIKey, payload)
}

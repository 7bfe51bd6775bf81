package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"villa/config"
	"villa/infras/channels"
	channelsMocks "villa/infras/channels/mocks"
	"villa/infras/otel/mocks"
	bookingMocks "villa/internal/domains/booking/mocks"
	bookingModel "villa/internal/domains/booking/model"
	"villa/internal/domains/channel/service"
	roomMocks "villa/internal/domains/room/mocks"
	roomModel "villa/internal/domains/room/model"
	gDto "villa/shared/dto"
	"villa/shared/failure"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return t
}

func pendingBooking() bookingModel.Booking {
	return bookingModel.Booking{
		ID:             "booking-1",
		RoomID:         "room-1",
		GuestName:      "Maria Santos",
		GuestEmail:     "maria@example.com",
		CheckIn:        day("2026-07-01"),
		CheckOut:       day("2026-07-05"),
		Guests:         2,
		Status:         bookingModel.StatusPending,
		ExternalStatus: bookingModel.ExternalStatusUnsynced,
	}
}

func platformMock(ctrl *gomock.Controller, name string, configured bool, externalID string, pushErr error) channels.Channel {
	return capturingPlatformMock(ctrl, name, configured, externalID, pushErr, nil)
}

func capturingPlatformMock(ctrl *gomock.Controller, name string, configured bool, externalID string, pushErr error, pushed *channels.PushRequest) channels.Channel {
	mock := channelsMocks.NewMockChannel(ctrl)
	mock.EXPECT().Configured().Return(configured).AnyTimes()
	mock.EXPECT().Name().Return(name).AnyTimes()

	if configured {
		mock.EXPECT().
			PushBooking(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req channels.PushRequest) (string, error) {
				if pushed != nil {
					*pushed = req
				}

				return externalID, pushErr
			})
	}

	return mock
}

func TestChannelService_SyncBooking(t *testing.T) {
	t.Run("partial platform failure still persists the successes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockBookings := bookingMocks.NewMockBooking(ctrl)
		mockRooms := roomMocks.NewMockRoom(ctrl)

		var pushed channels.PushRequest
		platforms := []channels.Channel{
			capturingPlatformMock(ctrl, "booking.com", true, "bdc-123", nil, &pushed),
			platformMock(ctrl, "airbnb", true, "", errors.New("rate limited")),
			platformMock(ctrl, "tripadvisor", false, "", nil),
		}

		cfg := &config.Config{}
		svc := service.New(mockBookings, mockRooms, cfg, mocks.NewOtel(), nil, platforms)

		mockBookings.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingBooking(), nil)
		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{ID: "room-1", Name: "Garden Room"}, nil)

		var updated map[string]any
		mockBookings.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				updated = fields

				return nil
			})

		res, err := svc.SyncBooking(context.Background(), "booking-1")
		require.NoError(t, err)

		assert.Equal(t, "Maria Santos", pushed.GuestName)
		assert.Equal(t, "maria@example.com", pushed.GuestEmail)

		// Unconfigured platforms are reported too, as not synced.
		assert.Equal(t, map[string]bool{"booking.com": true, "airbnb": false, "tripadvisor": false}, res.Platforms)
		assert.False(t, res.Success)
		assert.Equal(t, "bdc-123", updated[bookingModel.FieldBookingComID])
		assert.NotContains(t, updated, bookingModel.FieldAirbnbID)
		// Attempted semantics: synced even though one platform failed.
		assert.Equal(t, bookingModel.ExternalStatusSynced, updated[bookingModel.FieldExternalStatus])
		assert.Equal(t, bookingModel.ExternalStatusSynced, res.Booking.ExternalStatus)
		assert.Equal(t, "bdc-123", res.Booking.BookingComID)
	})

	t.Run("all platforms failing still marks the attempt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockBookings := bookingMocks.NewMockBooking(ctrl)
		mockRooms := roomMocks.NewMockRoom(ctrl)

		platforms := []channels.Channel{
			platformMock(ctrl, "booking.com", true, "", errors.New("boom")),
			platformMock(ctrl, "airbnb", true, "", errors.New("boom")),
		}

		cfg := &config.Config{}
		svc := service.New(mockBookings, mockRooms, cfg, mocks.NewOtel(), nil, platforms)

		mockBookings.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingBooking(), nil)
		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{ID: "room-1", Name: "Garden Room"}, nil)

		var updated map[string]any
		mockBookings.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				updated = fields

				return nil
			})

		res, err := svc.SyncBooking(context.Background(), "booking-1")
		require.NoError(t, err)

		assert.Equal(t, map[string]bool{"booking.com": false, "airbnb": false}, res.Platforms)
		assert.False(t, res.Success)
		assert.Equal(t, bookingModel.ExternalStatusSynced, updated[bookingModel.FieldExternalStatus])
		assert.NotContains(t, updated, bookingModel.FieldBookingComID)
	})

	t.Run("every configured platform succeeding reports success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockBookings := bookingMocks.NewMockBooking(ctrl)
		mockRooms := roomMocks.NewMockRoom(ctrl)

		platforms := []channels.Channel{
			platformMock(ctrl, "booking.com", true, "bdc-777", nil),
			platformMock(ctrl, "airbnb", true, "ab-777", nil),
		}

		cfg := &config.Config{}
		svc := service.New(mockBookings, mockRooms, cfg, mocks.NewOtel(), nil, platforms)

		mockBookings.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(pendingBooking(), nil)
		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{ID: "room-1", Name: "Garden Room"}, nil)
		mockBookings.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.SyncBooking(context.Background(), "booking-1")
		require.NoError(t, err)

		assert.True(t, res.Success)
		assert.Equal(t, map[string]bool{"booking.com": true, "airbnb": true}, res.Platforms)
		assert.Equal(t, "bdc-777", res.Booking.BookingComID)
		assert.Equal(t, "ab-777", res.Booking.AirbnbID)
	})

	t.Run("missing booking is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockBookings := bookingMocks.NewMockBooking(ctrl)
		mockRooms := roomMocks.NewMockRoom(ctrl)

		cfg := &config.Config{}
		svc := service.New(mockBookings, mockRooms, cfg, mocks.NewOtel(), nil, nil)

		mockBookings.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bookingModel.Booking{}, nil)

		_, err := svc.SyncBooking(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

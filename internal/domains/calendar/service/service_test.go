package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"villa/config"
	"villa/infras/otel/mocks"
	bookingMocks "villa/internal/domains/booking/mocks"
	bookingModel "villa/internal/domains/booking/model"
	"villa/internal/domains/calendar/service"
	roomMocks "villa/internal/domains/room/mocks"
	roomModel "villa/internal/domains/room/model"
	"villa/shared/failure"
)

const airbnbFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN
BEGIN:VEVENT
UID:1441d4fa4321-abc@airbnb.com
DTSTART;VALUE=DATE:20260701
DTEND;VALUE=DATE:20260705
SUMMARY:Reserved
END:VEVENT
END:VCALENDAR
`

const feedMissingEnd = `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
UID:no-end@airbnb.com
DTSTART;VALUE=DATE:20260710
SUMMARY:Not available
END:VEVENT
END:VCALENDAR
`

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return t
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newCalendarService(t *testing.T) (service.Calendar, *bookingMocks.MockBooking, *roomMocks.MockRoom) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockBookings := bookingMocks.NewMockBooking(ctrl)
	mockRooms := roomMocks.NewMockRoom(ctrl)

	cfg := &config.Config{}
	cfg.App.Name = "villa"
	cfg.Import.FetchTimeoutSeconds = 5
	cfg.Import.DefaultGuests = 2

	svc := service.New(mockBookings, mockRooms, cfg, mocks.NewOtel(), nil)

	return svc, mockBookings, mockRooms
}

func importRoomModel(id string, urls ...string) roomModel.Room {
	return roomModel.Room{
		ID:             id,
		Name:           "Garden Room",
		Active:         true,
		ICalImportURLs: urls,
		ICalToken:      "feed-token",
	}
}

func TestCalendarService_ImportRoom(t *testing.T) {
	t.Run("new airbnb event is imported as confirmed", func(t *testing.T) {
		srv := feedServer(t, airbnbFeed)
		svc, mockBookings, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1", srv.URL), nil)

		var inserted bookingModel.Booking
		gomock.InOrder(
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil), // dedup probe
			mockBookings.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, b bookingModel.Booking) error {
					inserted = b

					return nil
				}),
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil), // overlap probe
		)

		res, err := svc.ImportRoom(context.Background(), "room-1")
		require.NoError(t, err)

		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 0, res.Skipped)
		assert.Equal(t, 0, res.Overlaps)

		assert.Equal(t, bookingModel.StatusConfirmed, inserted.Status)
		assert.Equal(t, bookingModel.ExternalStatusImported, inserted.ExternalStatus)
		assert.Equal(t, "1441d4fa4321-abc@airbnb.com", inserted.AirbnbID)
		assert.Equal(t, day("2026-07-01"), inserted.CheckIn)
		assert.Equal(t, day("2026-07-05"), inserted.CheckOut)
		assert.Equal(t, 2, inserted.Guests)
		assert.Contains(t, inserted.SpecialRequests, srv.URL)
		assert.Contains(t, inserted.SpecialRequests, "Reserved")
	})

	t.Run("second run skips the already imported event", func(t *testing.T) {
		srv := feedServer(t, airbnbFeed)
		svc, mockBookings, mockRooms := newCalendarService(t)

		existing := bookingModel.Booking{
			ID:       "already-there",
			RoomID:   "room-1",
			CheckIn:  day("2026-07-01"),
			CheckOut: day("2026-07-05"),
			Status:   bookingModel.StatusConfirmed,
			AirbnbID: "1441d4fa4321-abc@airbnb.com",
		}

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1", srv.URL), nil)
		mockBookings.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{existing}, nil)

		res, err := svc.ImportRoom(context.Background(), "room-1")
		require.NoError(t, err)

		assert.Equal(t, 0, res.Imported)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("import proceeds despite an overlapping local booking", func(t *testing.T) {
		srv := feedServer(t, airbnbFeed)
		svc, mockBookings, mockRooms := newCalendarService(t)

		local := bookingModel.Booking{
			ID:       "local-booking",
			RoomID:   "room-1",
			CheckIn:  day("2026-07-03"),
			CheckOut: day("2026-07-08"),
			Status:   bookingModel.StatusPending,
		}

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1", srv.URL), nil)
		gomock.InOrder(
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil),
			mockBookings.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				Return(nil),
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]bookingModel.Booking{local}, nil),
		)

		res, err := svc.ImportRoom(context.Background(), "room-1")
		require.NoError(t, err)

		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 1, res.Overlaps)
	})

	t.Run("event without an end date is skipped", func(t *testing.T) {
		srv := feedServer(t, feedMissingEnd)
		svc, _, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1", srv.URL), nil)

		res, err := svc.ImportRoom(context.Background(), "room-1")
		require.NoError(t, err)

		assert.Equal(t, 0, res.Imported)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("dead feed is recorded and does not abort the other feeds", func(t *testing.T) {
		dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(dead.Close)
		alive := feedServer(t, airbnbFeed)

		svc, mockBookings, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1", dead.URL, alive.URL), nil)
		gomock.InOrder(
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil),
			mockBookings.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				Return(nil),
			mockBookings.EXPECT().
				GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil),
		)

		res, err := svc.ImportRoom(context.Background(), "room-1")
		require.NoError(t, err)

		require.Len(t, res.Feeds, 2)
		assert.NotEmpty(t, res.Feeds[0].Error)
		assert.Equal(t, 1, res.Imported)
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		svc, _, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{}, nil)

		_, err := svc.ImportRoom(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestCalendarService_RenderFeed(t *testing.T) {
	t.Run("renders full history ordered by check-in", func(t *testing.T) {
		svc, mockBookings, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(importRoomModel("room-1"), nil)
		mockBookings.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]bookingModel.Booking{
				{
					ID:        "b1",
					RoomID:    "room-1",
					GuestName: "Maria Santos",
					CheckIn:   day("2026-07-01"),
					CheckOut:  day("2026-07-05"),
					Guests:    2,
					Status:    bookingModel.StatusConfirmed,
				},
				{
					ID:        "b2",
					RoomID:    "room-1",
					GuestName: "John Doe",
					CheckIn:   day("2026-08-01"),
					CheckOut:  day("2026-08-03"),
					Guests:    1,
					Status:    bookingModel.StatusCancelled,
				},
			}, nil)

		res, err := svc.RenderFeed(context.Background(), "feed-token")
		require.NoError(t, err)

		body := string(res.Body)
		assert.Equal(t, "Garden Room", res.RoomName)
		assert.Equal(t, "feed-token.ics", res.Filename)
		assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
		assert.Contains(t, body, "Maria Santos")
		assert.Contains(t, body, "DTSTART;VALUE=DATE:20260701")
		assert.Contains(t, body, "DTEND;VALUE=DATE:20260705")
		// Cancelled bookings are part of the exported history.
		assert.Contains(t, body, "John Doe")
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		svc, _, mockRooms := newCalendarService(t)

		mockRooms.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{}, nil)

		_, err := svc.RenderFeed(context.Background(), "bogus")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

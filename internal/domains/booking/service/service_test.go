package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"villa/config"
	"villa/infras/kafka"
	kafkaMocks "villa/infras/kafka/mocks"
	"villa/infras/otel/mocks"
	bookingMocks "villa/internal/domains/booking/mocks"
	"villa/internal/domains/booking/model"
	"villa/internal/domains/booking/model/dto"
	"villa/internal/domains/booking/service"
	roomMocks "villa/internal/domains/room/mocks"
	roomModel "villa/internal/domains/room/model"
	cacheMocks "villa/shared/cache/mocks"
	"villa/shared/constant"
	gDto "villa/shared/dto"
	"villa/shared/failure"
	"villa/shared/keylock"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return t
}

func storedBooking(roomID, checkIn, checkOut, status string) model.Booking {
	return model.Booking{
		ID:       "existing-booking",
		RoomID:   roomID,
		CheckIn:  day(checkIn),
		CheckOut: day(checkOut),
		Status:   status,
	}
}

func newBookingService(t *testing.T) (service.Booking, *bookingMocks.MockBooking, *roomMocks.MockRoom, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	// Cache invalidation runs on a detached goroutine; it may or may not
	// land before the test finishes.
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockRoomRepo, cfg, mockCache, mocks.NewOtel(), nil, keylock.New())

	return svc, mockRepo, mockRoomRepo, mockCache
}

func newBookingServiceWithKafka(t *testing.T) (service.Booking, *bookingMocks.MockBooking, *roomMocks.MockRoom, *kafkaMocks.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Enable = true

	svc := service.New(mockRepo, mockRoomRepo, cfg, mockCache, mocks.NewOtel(), mockKafka, keylock.New())

	return svc, mockRepo, mockRoomRepo, mockKafka
}

func activeRoom(id string) roomModel.Room {
	return roomModel.Room{ID: id, Name: "Garden Room", Active: true}
}

func createRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		RoomID:     "room-1",
		GuestName:  "Maria Santos",
		GuestEmail: "maria@example.com",
		GuestPhone: "+351912345678",
		CheckIn:    "2026-07-01",
		CheckOut:   "2026-07-05",
		Guests:     2,
	}
}

func TestBookingService_Create(t *testing.T) {
	t.Run("free dates create a pending unsynced booking", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeRoom("room-1"), nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil)

		var inserted model.Booking
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b model.Booking) error {
				inserted = b

				return nil
			})

		res, err := svc.Create(context.Background(), createRequest())
		require.NoError(t, err)

		assert.Equal(t, model.StatusPending, inserted.Status)
		assert.Equal(t, model.ExternalStatusUnsynced, inserted.ExternalStatus)
		assert.Equal(t, day("2026-07-01"), inserted.CheckIn)
		assert.Equal(t, day("2026-07-05"), inserted.CheckOut)
		assert.Equal(t, inserted.ID, res.ID)
		assert.Equal(t, "2026-07-01", res.CheckIn)
	})

	t.Run("overlapping active booking is rejected with conflict details", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeRoom("room-1"), nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Booking{storedBooking("room-1", "2026-07-03", "2026-07-08", model.StatusConfirmed)}, nil)

		_, err := svc.Create(context.Background(), createRequest())
		require.Error(t, err)

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))

		details, ok := failure.GetDetails(err).([]dto.BookedRange)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "2026-07-03", details[0].CheckIn)
		assert.Equal(t, "2026-07-08", details[0].CheckOut)
	})

	t.Run("check-out before check-in is a validation error", func(t *testing.T) {
		svc, _, _, _ := newBookingService(t)

		req := createRequest()
		req.CheckIn = "2026-07-05"
		req.CheckOut = "2026-07-01"

		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("same-day stay is a validation error", func(t *testing.T) {
		svc, _, _, _ := newBookingService(t)

		req := createRequest()
		req.CheckOut = req.CheckIn

		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown room is rejected", func(t *testing.T) {
		svc, _, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(roomModel.Room{}, nil)

		_, err := svc.Create(context.Background(), createRequest())
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("inactive room is rejected", func(t *testing.T) {
		svc, _, mockRoomRepo, _ := newBookingService(t)

		room := activeRoom("room-1")
		room.Active = false
		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(room, nil)

		_, err := svc.Create(context.Background(), createRequest())
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("exclusion constraint violation maps to conflict", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeRoom("room-1"), nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, nil)
		mockRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: "23P01"})

		_, err := svc.Create(context.Background(), createRequest())
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("repository failure surfaces as internal error", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(activeRoom("room-1"), nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))

		_, err := svc.Create(context.Background(), createRequest())
		require.Error(t, err)
		assert.NotEqual(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestBookingService_CheckAvailability(t *testing.T) {
	query := dto.AvailabilityQuery{CheckIn: "2026-07-01", CheckOut: "2026-07-05"}

	t.Run("free range reports available with next booked date", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)

		// First query collects overlaps, second the next check-in at or
		// after the candidate check-out.
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				if params.Limit == 1 {
					return []model.Booking{storedBooking("room-1", "2026-07-10", "2026-07-12", model.StatusPending)}, nil
				}

				return nil, nil
			}).
			Times(2)

		res, err := svc.CheckAvailability(context.Background(), "room-1", query)
		require.NoError(t, err)

		assert.True(t, res.Available)
		assert.Empty(t, res.Conflicts)
		assert.Equal(t, "2026-07-10", res.NextBookedDate)
	})

	t.Run("overlap reports conflicts ordered by check-in", func(t *testing.T) {
		svc, mockRepo, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(true, nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
				if params.Limit == 1 {
					return nil, nil
				}

				return []model.Booking{
					storedBooking("room-1", "2026-06-30", "2026-07-02", model.StatusConfirmed),
					storedBooking("room-1", "2026-07-04", "2026-07-06", model.StatusPending),
				}, nil
			}).
			Times(2)

		res, err := svc.CheckAvailability(context.Background(), "room-1", query)
		require.NoError(t, err)

		assert.False(t, res.Available)
		require.Len(t, res.Conflicts, 2)
		assert.Equal(t, "2026-06-30", res.Conflicts[0].CheckIn)
		assert.Empty(t, res.NextBookedDate)
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		svc, _, mockRoomRepo, _ := newBookingService(t)

		mockRoomRepo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			Return(false, nil)

		_, err := svc.CheckAvailability(context.Background(), "missing", query)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("malformed dates are a validation error", func(t *testing.T) {
		svc, _, _, _ := newBookingService(t)

		_, err := svc.CheckAvailability(context.Background(), "room-1", dto.AvailabilityQuery{CheckIn: "July 1st", CheckOut: "2026-07-05"})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestBookingService_BookedDates(t *testing.T) {
	svc, mockRepo, _, mockCache := newBookingService(t)

	mockCache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))
	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{
			storedBooking("room-1", "2026-07-01", "2026-07-05", model.StatusConfirmed),
			storedBooking("room-1", "2026-07-05", "2026-07-07", model.StatusPending),
		}, nil)

	res, err := svc.BookedDates(context.Background(), "room-1")
	require.NoError(t, err)

	assert.Equal(t, "room-1", res.RoomID)
	require.Len(t, res.Dates, 2)
	assert.Equal(t, "2026-07-01", res.Dates[0].CheckIn)
	assert.Equal(t, model.StatusPending, res.Dates[1].Status)
}

func TestBookingService_Update(t *testing.T) {
	t.Run("first confirmation stamps the confirmation fields", func(t *testing.T) {
		svc, mockRepo, _, _ := newBookingService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(storedBooking("room-1", "2026-07-01", "2026-07-05", model.StatusPending), nil)

		var updated map[string]any
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				updated = fields

				return nil
			})

		err := svc.Update(context.Background(), dto.UpdateBookingRequest{Status: model.StatusConfirmed}, "existing-booking")
		require.NoError(t, err)

		assert.Contains(t, updated, "confirmed_at")
		assert.Equal(t, "manual", updated["confirmation_method"])
		assert.Equal(t, "en", updated["confirmation_language"])
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		svc, _, _, _ := newBookingService(t)

		err := svc.Update(context.Background(), dto.UpdateBookingRequest{}, "existing-booking")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("missing booking is not found", func(t *testing.T) {
		svc, mockRepo, _, _ := newBookingService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{}, nil)

		err := svc.Update(context.Background(), dto.UpdateBookingRequest{Status: model.StatusCancelled}, "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("existing booking is deleted", func(t *testing.T) {
		svc, mockRepo, _, _ := newBookingService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(storedBooking("room-1", "2026-07-01", "2026-07-05", model.StatusPending), nil)
		mockRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil)

		err := svc.Delete(context.Background(), "existing-booking")
		require.NoError(t, err)
	})

	t.Run("missing booking is not found", func(t *testing.T) {
		svc, mockRepo, _, _ := newBookingService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Booking{}, nil)

		err := svc.Delete(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		svc, mockRepo, _, _ := newBookingService(t)

		mockRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(storedBooking("room-1", "2026-07-01", "2026-07-05", model.StatusPending), nil)
		mockRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(errors.New("connection refused"))

		err := svc.Delete(context.Background(), "existing-booking")
		require.Error(t, err)
		assert.NotEqual(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestBookingService_PublishesCreatedEvent(t *testing.T) {
	svc, mockRepo, mockRoomRepo, mockKafka := newBookingServiceWithKafka(t)

	mockRoomRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(activeRoom("room-1"), nil)
	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)
	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(nil)

	// The publish runs on a detached goroutine; block until it lands.
	published := make(chan kafka.Message, 1)
	mockKafka.EXPECT().
		SendMessages(gomock.Any(), constant.TopicBookingCreated, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			published <- messages[0]

			return nil
		})

	res, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	select {
	case message := <-published:
		assert.Equal(t, res.ID, message.Key)

		event, ok := message.Value.(service.BookingEvent)
		require.True(t, ok)
		assert.Equal(t, res.ID, event.BookingID)
		assert.Equal(t, "room-1", event.RoomID)
		assert.Equal(t, "2026-07-01", event.CheckIn)
		assert.Equal(t, model.StatusPending, event.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("booking created event was not published")
	}
}

package service

import (
	"context"
	"fmt"
	"sync"

	"villa/config"
	"villa/infras/channels"
	"villa/infras/kafka"
	"villa/infras/otel"
	"villa/internal/domains/booking/model"
	bookingRepo "villa/internal/domains/booking/repository"
	"villa/internal/domains/channel/model/dto"
	roomModel "villa/internal/domains/room/model"
	roomRepo "villa/internal/domains/room/repository"
	"villa/shared"
	"villa/shared/constant"
	"villa/shared/failure"
	"villa/shared/timezone"

	"github.com/rs/zerolog/log"
)

// SyncedEvent is published after an outbound sync attempt settles.
type SyncedEvent struct {
	BookingID string          `json:"booking_id"`
	RoomID    string          `json:"room_id"`
	Platforms map[string]bool `json:"platforms"`
}

type Channel interface {
	SyncBooking(ctx context.Context, bookingID string) (dto.SyncResult, error)
}

type serviceImpl struct {
	bookings  bookingRepo.Booking
	rooms     roomRepo.Room
	cfg       *config.Config
	otel      otel.Otel
	kafka     kafka.Client
	platforms []channels.Channel
}

func New(bookings bookingRepo.Booking, rooms roomRepo.Room, cfg *config.Config, otel otel.Otel, kafka kafka.Client, platforms []channels.Channel) Channel {
	return &serviceImpl{
		bookings:  bookings,
		rooms:     rooms,
		cfg:       cfg,
		otel:      otel,
		kafka:     kafka,
		platforms: platforms,
	}
}

// SyncBooking pushes the booking to every configured platform, all in
// parallel, and fans back in before touching the record once. A platform
// failure never blocks or rolls back another platform's success. The
// booking ends up external_status=synced no matter what: the field means
// "a sync was attempted", the per-platform map carries the real outcome.
func (s *serviceImpl) SyncBooking(ctx context.Context, bookingID string) (res dto.SyncResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SyncBooking")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(bookingID, model.FieldID, model.TableName)

	booking, err := s.bookings.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking for sync")

		return res, fmt.Errorf("failed to get booking for sync: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	room, err := s.rooms.Get(ctx, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for sync")

		return res, fmt.Errorf("failed to get room for sync: %w", err)
	}

	push := channels.PushRequest{
		BookingID:  booking.ID,
		RoomName:   room.Name,
		GuestName:  booking.GuestName,
		GuestEmail: booking.GuestEmail,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Guests:     booking.Guests,
	}

	type platformResult struct {
		platform   string
		externalID string
		ok         bool
	}

	var wg sync.WaitGroup

	results := make(chan platformResult, len(s.platforms))

	res.BookingID = booking.ID
	res.Success = true
	res.Platforms = map[string]bool{}

	for _, platform := range s.platforms {
		// Skipped platforms still show up in the report, as not synced.
		res.Platforms[platform.Name()] = false

		if !platform.Configured() {
			continue
		}

		wg.Add(1)

		go func(ch channels.Channel) {
			defer wg.Done()

			externalID, pushErr := ch.PushBooking(ctx, push)
			if pushErr != nil {
				log.Warn().Err(pushErr).Str("platform", ch.Name()).Str("bookingID", booking.ID).Msg("platform push failed")

				results <- platformResult{platform: ch.Name(), ok: false}

				return
			}

			results <- platformResult{platform: ch.Name(), externalID: externalID, ok: true}
		}(platform)
	}

	wg.Wait()
	close(results)

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

	updatedFields := map[string]any{
		model.FieldExternalStatus: model.ExternalStatusSynced,
		constant.FieldModifiedAt:  timezone.Now(),
		constant.FieldModifiedBy:  user,
	}

	for result := range results {
		res.Platforms[result.platform] = result.ok

		if !result.ok {
			res.Success = false

			continue
		}

		switch result.platform {
		case constant.PlatformBookingCom:
			booking.BookingComID = result.externalID
			updatedFields[model.FieldBookingComID] = result.externalID
		case constant.PlatformAirbnb:
			booking.AirbnbID = result.externalID
			updatedFields[model.FieldAirbnbID] = result.externalID
		case constant.PlatformTripadvisor:
			booking.TripadvisorID = result.externalID
			updatedFields[model.FieldTripadvisorID] = result.externalID
		}
	}

	if err = s.bookings.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to persist sync result")

		return res, fmt.Errorf("failed to persist sync result: %w", err)
	}

	booking.ExternalStatus = model.ExternalStatusSynced
	res.Booking.FromModel(booking)

	s.publishSynced(ctx, booking, res.Platforms)

	return res, nil
}

func (s *serviceImpl) publishSynced(ctx context.Context, booking model.Booking, platforms map[string]bool) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		event := SyncedEvent{
			BookingID: booking.ID,
			RoomID:    booking.RoomID,
			Platforms: platforms,
		}

		if err := s.kafka.SendMessages(c, constant.TopicBookingSynced, kafka.Message{Key: booking.ID, Value: event}); err != nil {
			log.Error().Err(err).Msg("failed to publish sync event")
		}
	}()
}

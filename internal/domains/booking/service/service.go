package service

import (
	"context"
	"errors"
	"fmt"

	"villa/config"
	"villa/infras/kafka"
	"villa/infras/otel"
	"villa/internal/domains/booking/model"
	"villa/internal/domains/booking/model/dto"
	"villa/internal/domains/booking/repository"
	roomModel "villa/internal/domains/room/model"
	roomRepo "villa/internal/domains/room/repository"
	"villa/shared"
	"villa/shared/cache"
	"villa/shared/constant"
	"villa/shared/daterange"
	gDto "villa/shared/dto"
	"villa/shared/failure"
	"villa/shared/keylock"
	"villa/shared/timezone"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
	cacheBookedDates   = "booking:dates"

	defaultConfirmationMethod   = "manual"
	defaultConfirmationLanguage = "en"
)

// BookingEvent is the payload published on booking lifecycle topics.
type BookingEvent struct {
	BookingID string `json:"booking_id"`
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Status    string `json:"status"`
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, roomID string, query dto.AvailabilityQuery) (dto.AvailabilityResponse, error)
	BookedDates(ctx context.Context, roomID string) (dto.BookedDatesResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Booking
	roomRepo roomRepo.Room
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	kafka    kafka.Client
	locks    *keylock.KeyLock
}

func New(repo repository.Booking, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, kafka kafka.Client, locks *keylock.KeyLock) Booking {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		kafka:    kafka,
		locks:    locks,
	}
}

// Create books a stay for a guest. The room lock serializes concurrent
// requests for the same room so the availability re-check and the insert
// are not interleaved; the exclusion constraint in the database is the
// backstop if another writer slips past (e.g. a second instance).
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

	rng, err := req.Range()
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking dates")

		return res, failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
	}

	if !room.Active {
		return res, failure.BadRequestFromString("room is not bookable") // nolint:wrapcheck
	}

	s.locks.Lock(req.RoomID)
	defer s.locks.Unlock(req.RoomID)

	conflicts, err := s.overlapping(ctx, req.RoomID, rng)
	if err != nil {
		return res, err
	}

	if len(conflicts) > 0 {
		return res, failure.ConflictWithDetails("requested dates are no longer available", conflictRanges(conflicts)) // nolint:wrapcheck
	}

	booking := req.ToModel(user, rng)

	if err = s.repo.Insert(ctx, booking); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeExclusionViolation {
			log.Warn().Str("roomID", req.RoomID).Msg("booking dates taken by a concurrent writer")

			return res, failure.Conflict("requested dates are no longer available") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publishEvent(ctx, constant.TopicBookingCreated, booking)
	s.invalidate(ctx, booking.ID, booking.RoomID)

	res.FromModel(booking)

	return res, nil
}

// CheckAvailability reports whether the candidate range is free, which
// stored bookings collide with it, and the next booked date at or after
// the candidate check-out.
func (s *serviceImpl) CheckAvailability(ctx context.Context, roomID string, query dto.AvailabilityQuery) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	rng, err := query.Range()
	if err != nil {
		return res, failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	}

	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	conflicts, err := s.overlapping(ctx, roomID, rng)
	if err != nil {
		return res, err
	}

	res.Available = len(conflicts) == 0
	res.Conflicts = conflictRanges(conflicts)

	nextBooked, err := s.nextBookedDate(ctx, roomID, rng)
	if err != nil {
		return res, err
	}
	res.NextBookedDate = nextBooked

	return res, nil
}

func (s *serviceImpl) BookedDates(ctx context.Context, roomID string) (res dto.BookedDatesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BookedDates")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheBookedDates, roomID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booked dates")

		return res, nil
	}

	filter := shared.FilterActiveByRoom(roomID, model.FieldRoomID, model.FieldStatus, model.TableName, model.ActiveStatuses)
	params := shared.BuildSortParams(model.FieldCheckIn, gDto.SortDirAsc)

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booked dates")

		return res, fmt.Errorf("failed to get booked dates: %w", err)
	}

	res.FromModels(roomID, models)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booked dates to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// Update applies the admin mutation. Dates are immutable here: changing a
// stay means cancelling and rebooking, so the no-overlap property cannot
// be broken by an update. Confirming a booking for the first time also
// stamps the confirmation fields.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateBookingRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if current.ID == constant.Empty {
		log.Error().Msg("booking not found")

		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)

	if req.Status == model.StatusConfirmed && current.ConfirmedAt == nil {
		updatedFields["confirmed_at"] = timezone.Now()

		if req.ConfirmationMethod == constant.Empty {
			updatedFields["confirmation_method"] = defaultConfirmationMethod
		}

		if req.ConfirmationLanguage == constant.Empty {
			updatedFields["confirmation_language"] = defaultConfirmationLanguage
		}
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	s.invalidate(ctx, id, current.RoomID)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	current, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if current.ID == constant.Empty {
		log.Error().Msg("booking not found")

		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.invalidate(ctx, id, current.RoomID)

	return nil
}

// overlapping returns the active bookings colliding with the candidate
// range, earliest check-in first.
func (s *serviceImpl) overlapping(ctx context.Context, roomID string, rng daterange.Range) ([]model.Booking, error) {
	filter := shared.FilterOverlapping(
		roomID,
		model.FieldRoomID,
		model.FieldStatus,
		model.FieldCheckIn,
		model.FieldCheckOut,
		model.TableName,
		model.ActiveStatuses,
		rng.CheckIn,
		rng.CheckOut,
	)
	params := shared.BuildSortParams(model.FieldCheckIn, gDto.SortDirAsc)

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to query overlapping bookings")

		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}

	return models, nil
}

// nextBookedDate finds the earliest active check-in at or after the
// candidate check-out, or empty if the calendar is open from there on.
func (s *serviceImpl) nextBookedDate(ctx context.Context, roomID string, rng daterange.Range) (string, error) {
	filter := shared.FilterActiveByRoom(roomID, model.FieldRoomID, model.FieldStatus, model.TableName, model.ActiveStatuses)
	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "next_from",
		Field:    model.FieldCheckIn,
		Value:    rng.CheckOut,
		Operator: gDto.FilterOperatorGreaterEq,
		Table:    model.TableName,
	})

	params := shared.BuildSortParams(model.FieldCheckIn, gDto.SortDirAsc)
	params.Limit = 1

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to query next booked date")

		return constant.Empty, fmt.Errorf("failed to query next booked date: %w", err)
	}

	if len(models) == 0 {
		return constant.Empty, nil
	}

	return models[0].CheckIn.Format(constant.DateOnlyFormat), nil
}

func conflictRanges(models []model.Booking) []dto.BookedRange {
	if len(models) == 0 {
		return nil
	}

	ranges := make([]dto.BookedRange, len(models))
	for i, mod := range models {
		ranges[i] = dto.NewBookedRange(mod)
	}

	return ranges
}

func (s *serviceImpl) publishEvent(ctx context.Context, topic string, booking model.Booking) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		event := BookingEvent{
			BookingID: booking.ID,
			RoomID:    booking.RoomID,
			CheckIn:   booking.CheckIn.Format(constant.DateOnlyFormat),
			CheckOut:  booking.CheckOut.Format(constant.DateOnlyFormat),
			Status:    booking.Status,
		}

		if err := s.kafka.SendMessages(c, topic, kafka.Message{Key: booking.ID, Value: event}); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context, bookingID, roomID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, bookingID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheBookedDates, roomID)); err != nil {
			log.Error().Err(err).Msg("failed to delete booked dates from cache")
		}
	}()
}

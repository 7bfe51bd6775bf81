package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"villa/config"
	"villa/infras/kafka"
	"villa/infras/otel"
	bookingModel "villa/internal/domains/booking/model"
	bookingRepo "villa/internal/domains/booking/repository"
	"villa/internal/domains/calendar/model/dto"
	roomModel "villa/internal/domains/room/model"
	roomRepo "villa/internal/domains/room/repository"
	"villa/shared"
	"villa/shared/constant"
	"villa/shared/daterange"
	gDto "villa/shared/dto"
	"villa/shared/failure"
	"villa/shared/ics"
	gModel "villa/shared/model"
	"villa/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	feedBodyLimit = 4 << 20 // feeds are small; anything bigger is suspect

	placeholderEmail = "imported@external.invalid"
	placeholderPhone = "n/a"
)

// platformMarkers maps UID substrings to platforms, first match wins.
// Order matters: it is the documented detection order, not alphabetical.
var platformMarkers = []struct {
	marker   string
	platform string
}{
	{"booking.com", constant.PlatformBookingCom},
	{"airbnb", constant.PlatformAirbnb},
	{"tripadvisor", constant.PlatformTripadvisor},
}

// ImportedEvent is published for every booking created from an external
// feed.
type ImportedEvent struct {
	RoomID    string `json:"room_id"`
	BookingID string `json:"booking_id"`
	Platform  string `json:"platform"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	SourceURL string `json:"source_url"`
}

// OverlapEvent is published when an imported booking collides with an
// already stored active booking. The overlap is kept, not resolved: the
// event is the reconciliation signal for the operator.
type OverlapEvent struct {
	RoomID            string `json:"room_id"`
	ImportedBookingID string `json:"imported_booking_id"`
	CheckIn           string `json:"check_in"`
	CheckOut          string `json:"check_out"`
	SourceURL         string `json:"source_url"`
}

type Calendar interface {
	ImportRoom(ctx context.Context, roomID string) (dto.ImportResult, error)
	ImportAll(ctx context.Context) ([]dto.ImportResult, error)
	RenderFeed(ctx context.Context, token string) (dto.FeedResponse, error)
}

type serviceImpl struct {
	bookings bookingRepo.Booking
	rooms    roomRepo.Room
	cfg      *config.Config
	otel     otel.Otel
	kafka    kafka.Client
	hc       *http.Client
}

func New(bookings bookingRepo.Booking, rooms roomRepo.Room, cfg *config.Config, otel otel.Otel, kafka kafka.Client) Calendar {
	return &serviceImpl{
		bookings: bookings,
		rooms:    rooms,
		cfg:      cfg,
		otel:     otel,
		kafka:    kafka,
		hc:       &http.Client{Timeout: time.Duration(cfg.Import.FetchTimeoutSeconds) * time.Second},
	}
}

// ImportRoom pulls every configured external feed for the room and merges
// the events into the booking store. Imported events are recorded without
// an availability check: the external platform is authoritative for its
// own sales, and an overlap with a local booking is surfaced as a signal,
// never dropped.
func (s *serviceImpl) ImportRoom(ctx context.Context, roomID string) (res dto.ImportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ImportRoom")
	defer scope.End()
	defer scope.TraceIfError(err)

	room, err := s.rooms.Get(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for import")

		return res, fmt.Errorf("failed to get room for import: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	res = s.importRoom(ctx, room)

	return res, nil
}

// ImportAll runs the import for every active room that has feeds
// configured. Per-room failures don't stop the run.
func (s *serviceImpl) ImportAll(ctx context.Context) (res []dto.ImportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ImportAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	activeOnly := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    roomModel.FieldActive,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    roomModel.TableName,
			},
		},
	}

	rooms, err := s.rooms.GetAll(ctx, gDto.QueryParams{}, activeOnly)
	if err != nil {
		log.Error().Err(err).Msg("failed to list rooms for import")

		return nil, fmt.Errorf("failed to list rooms for import: %w", err)
	}

	for _, room := range rooms {
		if len(room.ICalImportURLs) == 0 {
			continue
		}

		res = append(res, s.importRoom(ctx, room))
	}

	return res, nil
}

func (s *serviceImpl) importRoom(ctx context.Context, room roomModel.Room) dto.ImportResult {
	result := dto.ImportResult{RoomID: room.ID}

	for _, url := range room.ICalImportURLs {
		result.Add(s.importURL(ctx, room, url))
	}

	log.Info().
		Str("roomID", room.ID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("overlaps", result.Overlaps).
		Msg("feed import finished")

	return result
}

// importURL fails soft: any fetch or parse problem is recorded on the
// result and the caller moves on to the next feed.
func (s *serviceImpl) importURL(ctx context.Context, room roomModel.Room, url string) dto.FeedResult {
	result := dto.FeedResult{URL: url}

	events, err := s.fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("roomID", room.ID).Str("url", url).Msg("feed fetch failed, continuing with next feed")
		result.Error = err.Error()

		return result
	}

	// Sequential on purpose: dedup for later events may depend on rows
	// inserted earlier in this same run.
	for _, event := range events {
		outcome, err := s.mergeEvent(ctx, room, url, event)
		if err != nil {
			result.Error = err.Error()

			return result
		}

		switch outcome {
		case mergeImported:
			result.Imported++
		case mergeImportedOverlap:
			result.Imported++
			result.Overlaps++
		case mergeSkipped:
			result.Skipped++
		}
	}

	return result
}

func (s *serviceImpl) fetch(ctx context.Context, url string) ([]ics.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Import.FetchTimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, feedBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	events, err := ics.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return events, nil
}

type mergeOutcome int

const (
	mergeSkipped mergeOutcome = iota
	mergeImported
	mergeImportedOverlap
)

func (s *serviceImpl) mergeEvent(ctx context.Context, room roomModel.Room, url string, event ics.Event) (mergeOutcome, error) {
	if !event.HasDates() {
		return mergeSkipped, nil
	}

	rng, err := daterange.New(event.Start, event.End)
	if err != nil {
		log.Warn().Err(err).Str("uid", event.UID).Msg("feed event has an empty or inverted range, skipping")

		return mergeSkipped, nil
	}

	platform, externalID := detectPlatform(event.UID, url, rng)

	duplicate, err := s.alreadyImported(ctx, room.ID, rng, platform, externalID)
	if err != nil {
		return mergeSkipped, err
	}

	if duplicate {
		return mergeSkipped, nil
	}

	booking := newImportedBooking(room, url, event, rng, platform, externalID, s.cfg.Import.DefaultGuests)

	if err := s.bookings.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Str("roomID", room.ID).Msg("failed to insert imported booking")

		return mergeSkipped, fmt.Errorf("failed to insert imported booking: %w", err)
	}

	s.publishImported(ctx, booking, platform, url)

	overlapped, err := s.overlapsActive(ctx, booking, rng)
	if err != nil {
		// The booking itself is in; a failed overlap probe only loses the
		// reconciliation signal.
		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to probe for overlaps after import")

		return mergeImported, nil
	}

	if overlapped {
		log.Warn().
			Str("roomID", room.ID).
			Str("bookingID", booking.ID).
			Str("range", rng.String()).
			Msg("imported booking overlaps an active local booking, manual reconciliation needed")

		s.publishOverlap(ctx, booking, url)

		return mergeImportedOverlap, nil
	}

	return mergeImported, nil
}

// alreadyImported implements the idempotency rule: same room, exact same
// dates, and the same external id on the detected platform's column.
func (s *serviceImpl) alreadyImported(ctx context.Context, roomID string, rng daterange.Range, platform, externalID string) (bool, error) {
	filter := shared.FilterByID(roomID, bookingModel.FieldRoomID, bookingModel.TableName)
	filter.Operator = gDto.FilterGroupOperatorAnd
	filter.Filters = append(filter.Filters,
		gDto.Filter{
			Field:    bookingModel.FieldCheckIn,
			Value:    rng.CheckIn,
			Operator: gDto.FilterOperatorEq,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldCheckOut,
			Value:    rng.CheckOut,
			Operator: gDto.FilterOperatorEq,
			Table:    bookingModel.TableName,
		},
	)

	matches, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to query bookings for dedup")

		return false, fmt.Errorf("failed to query bookings for dedup: %w", err)
	}

	for _, match := range matches {
		if storedExternalID(match, platform) == externalID {
			return true, nil
		}
	}

	return false, nil
}

func (s *serviceImpl) overlapsActive(ctx context.Context, booking bookingModel.Booking, rng daterange.Range) (bool, error) {
	filter := shared.FilterOverlapping(
		booking.RoomID,
		bookingModel.FieldRoomID,
		bookingModel.FieldStatus,
		bookingModel.FieldCheckIn,
		bookingModel.FieldCheckOut,
		bookingModel.TableName,
		bookingModel.ActiveStatuses,
		rng.CheckIn,
		rng.CheckOut,
	)

	matches, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		return false, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}

	for _, match := range matches {
		if match.ID != booking.ID {
			return true, nil
		}
	}

	return false, nil
}

func (s *serviceImpl) publishImported(ctx context.Context, booking bookingModel.Booking, platform, url string) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		event := ImportedEvent{
			RoomID:    booking.RoomID,
			BookingID: booking.ID,
			Platform:  platform,
			CheckIn:   booking.CheckIn.Format(constant.DateOnlyFormat),
			CheckOut:  booking.CheckOut.Format(constant.DateOnlyFormat),
			SourceURL: url,
		}

		if err := s.kafka.SendMessages(c, constant.TopicBookingImported, kafka.Message{Key: booking.ID, Value: event}); err != nil {
			log.Error().Err(err).Msg("failed to publish imported event")
		}
	}()
}

func (s *serviceImpl) publishOverlap(ctx context.Context, booking bookingModel.Booking, url string) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		event := OverlapEvent{
			RoomID:            booking.RoomID,
			ImportedBookingID: booking.ID,
			CheckIn:           booking.CheckIn.Format(constant.DateOnlyFormat),
			CheckOut:          booking.CheckOut.Format(constant.DateOnlyFormat),
			SourceURL:         url,
		}

		if err := s.kafka.SendMessages(c, constant.TopicBookingOverlapDetected, kafka.Message{Key: booking.ID, Value: event}); err != nil {
			log.Error().Err(err).Msg("failed to publish overlap event")
		}
	}()
}

// RenderFeed serializes the room's full booking history as an outbound
// calendar, check-in ascending for stable diffs.
func (s *serviceImpl) RenderFeed(ctx context.Context, token string) (res dto.FeedResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RenderFeed")
	defer scope.End()
	defer scope.TraceIfError(err)

	room, err := s.rooms.Get(ctx, shared.FilterByID(token, roomModel.FieldICalToken, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room by calendar token")

		return res, fmt.Errorf("failed to get room by calendar token: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("calendar not found") // nolint:wrapcheck
	}

	params := shared.BuildSortParams(bookingModel.FieldCheckIn, gDto.SortDirAsc)
	filter := shared.FilterByID(room.ID, bookingModel.FieldRoomID, bookingModel.TableName)

	bookings, err := s.bookings.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings for feed")

		return res, fmt.Errorf("failed to list bookings for feed: %w", err)
	}

	calendar := ics.NewCalendar(room.Name)
	for _, booking := range bookings {
		calendar.AddEvent(ics.Event{
			UID:         booking.ID + "@" + s.cfg.App.Name,
			Summary:     fmt.Sprintf("%s: %s", room.Name, booking.GuestName),
			Description: fmt.Sprintf("%d guest(s), status %s", booking.Guests, booking.Status),
			Start:       booking.CheckIn,
			End:         booking.CheckOut,
			AllDay:      true,
		})
	}

	res.RoomName = room.Name
	res.Filename = room.ICalToken + ".ics"
	res.Body = calendar.Render()

	return res, nil
}

// detectPlatform classifies the event UID by the documented marker order;
// anything unrecognized lands in the generic bucket with a synthesized id
// so future runs can still dedup against it.
func detectPlatform(uid, url string, rng daterange.Range) (platform, externalID string) {
	lowered := strings.ToLower(uid)

	for _, candidate := range platformMarkers {
		if strings.Contains(lowered, candidate.marker) {
			return candidate.platform, uid
		}
	}

	if uid == constant.Empty {
		sum := sha256.Sum256([]byte(url + rng.String()))

		return constant.Empty, "ext-" + hex.EncodeToString(sum[:8])
	}

	return constant.Empty, "ext-" + uid
}

// storedExternalID mirrors detectPlatform's column choice: known platforms
// use their own column, the generic bucket shares the booking.com column
// (the ext- prefix keeps the two populations distinguishable).
func storedExternalID(booking bookingModel.Booking, platform string) string {
	if platform == constant.Empty {
		return booking.BookingComID
	}

	return booking.ExternalID(platform)
}

func newImportedBooking(room roomModel.Room, url string, event ics.Event, rng daterange.Range, platform, externalID string, defaultGuests int) bookingModel.Booking {
	if defaultGuests <= 0 {
		defaultGuests = 2
	}

	guestName := "External guest"
	if platform != constant.Empty {
		guestName = fmt.Sprintf("External guest (%s)", platform)
	}

	booking := bookingModel.Booking{
		ID:              uuid.NewString(),
		RoomID:          room.ID,
		GuestName:       guestName,
		GuestEmail:      placeholderEmail,
		GuestPhone:      placeholderPhone,
		CheckIn:         rng.CheckIn,
		CheckOut:        rng.CheckOut,
		Guests:          defaultGuests,
		Status:          bookingModel.StatusConfirmed,
		SpecialRequests: provenance(url, event.Summary),
		ExternalStatus:  bookingModel.ExternalStatusImported,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "importer",
			ModifiedBy: "importer",
		},
	}

	switch platform {
	case constant.PlatformAirbnb:
		booking.AirbnbID = externalID
	case constant.PlatformTripadvisor:
		booking.TripadvisorID = externalID
	default:
		booking.BookingComID = externalID
	}

	return booking
}

func provenance(url, summary string) string {
	if summary == constant.Empty {
		return fmt.Sprintf("Imported from %s", url)
	}

	return fmt.Sprintf("Imported from %s (%s)", url, summary)
}

package calendar

import (
	"net/http"
	"strings"
	"villa/infras/otel"
	"villa/internal/domains/calendar/service"
	"villa/shared/constant"
	"villa/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Calendar
	otel    otel.Otel
}

func New(service service.Calendar, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts the public feed endpoint. The token is an unguessable
// per-room identifier, so the feed itself needs no authentication.
func (handler *Handler) Router(router chi.Router) {
	router.Get("/calendar/{token}", handler.GetFeed)
}

// AdminRouter mounts the authenticated import endpoints.
func (handler *Handler) AdminRouter(router chi.Router) {
	router.Post("/rooms/{id}/calendar/import", handler.ImportRoom)
	router.Post("/calendar/import", handler.ImportAll)
}

// GetFeed renders a room's bookings as an iCalendar document. The route
// accepts both "/calendar/{token}" and "/calendar/{token}.ics".
func (handler *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFeed")
	defer scope.End()

	token := strings.TrimSuffix(chi.URLParam(r, constant.RequestParamToken), ".ics")

	feed, err := handler.service.RenderFeed(ctx, token)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to render calendar feed")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Calendar feed rendered for room " + feed.RoomName)

	response.WithCalendar(w, feed.Filename, feed.Body)
}

// ImportRoom pulls every configured external feed of one room and merges
// the events into the booking store.
func (handler *Handler) ImportRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ImportRoom")
	defer scope.End()

	roomID := chi.URLParam(r, constant.RequestParamID)

	result, err := handler.service.ImportRoom(ctx, roomID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to import calendar feeds")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Calendar feeds imported successfully")

	response.WithJSON(w, http.StatusOK, result)
}

// ImportAll pulls the feeds of every active room.
func (handler *Handler) ImportAll(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ImportAll")
	defer scope.End()

	results, err := handler.service.ImportAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to import calendar feeds")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Calendar feeds imported successfully")

	response.WithJSON(w, http.StatusOK, results)
}

package channel

import (
	"net/http"
	"villa/infras/otel"
	"villa/internal/domains/channel/service"
	"villa/shared/constant"
	"villa/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Channel
	otel    otel.Otel
}

func New(service service.Channel, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// AdminRouter mounts the authenticated sync endpoint.
func (handler *Handler) AdminRouter(router chi.Router) {
	router.Post("/bookings/{id}/sync", handler.SyncBooking)
}

// SyncBooking pushes a booking to every configured external platform and
// reports the per-platform outcome.
func (handler *Handler) SyncBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SyncBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	result, err := handler.service.SyncBooking(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sync booking")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	scope.AddEvent("Booking synced by " + user)

	response.WithJSON(w, http.StatusOK, result)
}

//go:build wireinject
// +build wireinject

package di

import (
	"villa/config"
	"villa/infras/channels"
	"villa/infras/jwt"
	"villa/infras/kafka"
	"villa/infras/otel"
	"villa/infras/postgres"
	"villa/infras/redis"
	"villa/infras/s3"
	"villa/shared/cache"
	"villa/shared/keylock"
	"villa/transport/http"
	"villa/transport/http/middleware"
	"villa/transport/http/router"

	authService "villa/internal/domains/auth/service"
	bookingRepository "villa/internal/domains/booking/repository"
	bookingService "villa/internal/domains/booking/service"
	calendarService "villa/internal/domains/calendar/service"
	channelService "villa/internal/domains/channel/service"
	roomRepository "villa/internal/domains/room/repository"
	roomService "villa/internal/domains/room/service"

	authHandler "villa/internal/handlers/auth"
	bookingHandler "villa/internal/handlers/booking"
	calendarHandler "villa/internal/handlers/calendar"
	channelHandler "villa/internal/handlers/channel"
	roomHandler "villa/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	channels.All,
	keylock.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var calendarDomain = wire.NewSet(
	calendarService.New,
)

var channelDomain = wire.NewSet(
	channelService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	calendarDomain,
	channelDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	bookingHandler.New,
	calendarHandler.New,
	channelHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

// InitializeImporter wires only what the feed importer needs.
func InitializeImporter() calendarService.Calendar {
	wire.Build(
		configurations,
		postgres.New,
		otel.New,
		kafka.New,
		bookingRepository.New,
		roomRepository.New,
		calendarService.New,
	)

	return nil
}

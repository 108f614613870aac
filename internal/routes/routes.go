package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	ucReservation "github.com/BruksfildServices01/barber-booking/internal/usecase/reservation"
)

type Deps struct {
	Store   domain.Store
	Catalog domain.Catalog
	Audit   *audit.Dispatcher
	Config  *config.Config
	Log     *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log),
		middleware.CORSMiddleware(),
	)

	// ======================================================
	// USE CASES
	// ======================================================
	reserveUC := ucReservation.NewReserve(d.Store, d.Catalog, d.Audit)
	cancelUC := ucReservation.NewCancel(d.Store, d.Catalog, d.Audit)
	completeUC := ucReservation.NewComplete(d.Store, d.Catalog, d.Audit)
	noShowUC := ucReservation.NewMarkNoShow(d.Store, d.Catalog, d.Audit)

	getUC := ucReservation.NewGetReservation(d.Store)
	byClientUC := ucReservation.NewListByClient(d.Store)
	byBarberUC := ucReservation.NewListByBarber(d.Store, d.Catalog)
	slotsUC := ucReservation.NewOccupiedSlots(d.Store, d.Catalog)

	// ======================================================
	// HANDLERS
	// ======================================================
	reservationHandler := handlers.NewReservationHandler(
		reserveUC,
		cancelUC,
		completeUC,
		noShowUC,
		getUC,
		byClientUC,
		byBarberUC,
		slotsUC,
		d.Catalog,
		d.Config.Timezone,
		d.Log,
	)

	r.GET("/health", handlers.Health(d.Config.Timezone))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.Config.RateLimitPerMin, d.Log))
	{
		api.POST("/reservations", reservationHandler.Create)
		api.GET("/reservations/:id", reservationHandler.Get)
		api.PATCH("/reservations/:id/cancel", reservationHandler.Cancel)
		api.PATCH("/reservations/:id/complete", reservationHandler.Complete)
		api.PATCH("/reservations/:id/no-show", reservationHandler.NoShow)

		api.GET("/clients/:id/reservations", reservationHandler.ListByClient)
		api.GET("/barbers/:id/reservations", reservationHandler.ListByBarber)
		api.GET("/offerings/:id/occupied-slots", reservationHandler.OccupiedSlots)
	}
}

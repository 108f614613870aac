package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucReservation "github.com/BruksfildServices01/barber-booking/internal/usecase/reservation"
)

// ======================================================
// HANDLER
// ======================================================

type ReservationHandler struct {
	reserve  *ucReservation.Reserve
	cancel   *ucReservation.Cancel
	complete *ucReservation.Complete
	noShow   *ucReservation.MarkNoShow
	get      *ucReservation.GetReservation
	byClient *ucReservation.ListByClient
	byBarber *ucReservation.ListByBarber
	slots    *ucReservation.OccupiedSlots

	catalog domain.Catalog
	tz      string
	log     *zap.Logger
}

func NewReservationHandler(
	reserve *ucReservation.Reserve,
	cancel *ucReservation.Cancel,
	complete *ucReservation.Complete,
	noShow *ucReservation.MarkNoShow,
	get *ucReservation.GetReservation,
	byClient *ucReservation.ListByClient,
	byBarber *ucReservation.ListByBarber,
	slots *ucReservation.OccupiedSlots,
	catalog domain.Catalog,
	tz string,
	log *zap.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		reserve:  reserve,
		cancel:   cancel,
		complete: complete,
		noShow:   noShow,
		get:      get,
		byClient: byClient,
		byBarber: byBarber,
		slots:    slots,
		catalog:  catalog,
		tz:       tz,
		log:      log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateReservationRequest struct {
	ClientID   uint   `json:"client_id" binding:"required"`
	OfferingID uint   `json:"offering_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Notes      string `json:"notes" binding:"max=255"`
}

// ======================================================
// CREATE
// ======================================================

func (h *ReservationHandler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := timezone.ParseDateTime(h.tz, req.Date, req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
		return
	}

	r, err := h.reserve.Execute(c.Request.Context(), ucReservation.ReserveInput{
		ClientID:   req.ClientID,
		OfferingID: req.OfferingID,
		StartTime:  start,
		Notes:      req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.Created(c, h.render(c.Request.Context(), *r, nil))
}

// ======================================================
// STATUS CHANGES
// ======================================================

func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute)
}

func (h *ReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

func (h *ReservationHandler) NoShow(c *gin.Context) {
	h.transition(c, h.noShow.Execute)
}

func (h *ReservationHandler) transition(
	c *gin.Context,
	execute func(ctx context.Context, id uint) (*models.Reservation, error),
) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	r, err := execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.OK(c, h.render(c.Request.Context(), *r, nil))
}

// ======================================================
// READS
// ======================================================

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	r, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.OK(c, h.render(c.Request.Context(), *r, nil))
}

func (h *ReservationHandler) ListByClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rs, err := h.byClient.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.List(c, h.renderAll(c.Request.Context(), rs))
}

func (h *ReservationHandler) ListByBarber(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rs, err := h.byBarber.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.List(c, h.renderAll(c.Request.Context(), rs))
}

// OccupiedSlots: GET /api/offerings/:id/occupied-slots?date=YYYY-MM-DD
func (h *ReservationHandler) OccupiedSlots(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data é obrigatória.")
		return
	}

	day, err := timezone.ParseDate(h.tz, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	marks, err := h.slots.Execute(c.Request.Context(), id, day)
	if err != nil {
		h.fail(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"offering_id": id,
		"date":        dateStr,
		"occupied":    marks,
	})
}

// ======================================================
// HELPERS
// ======================================================

func (h *ReservationHandler) fail(c *gin.Context, err error) {
	httperr.Respond(c, middleware.Logger(c, h.log), err)
}

// render enriches r with its offering. cache may be nil.
func (h *ReservationHandler) render(
	ctx context.Context,
	r models.Reservation,
	cache map[uint]*models.Offering,
) dto.ReservationDTO {

	o, ok := cache[r.OfferingID]
	if !ok {
		var err error
		o, err = h.catalog.ResolveOffering(ctx, r.OfferingID)
		if err != nil {
			h.log.Warn("offering lookup failed",
				zap.Uint("offering_id", r.OfferingID),
				zap.Error(err),
			)
		}
		if cache != nil {
			cache[r.OfferingID] = o
		}
	}

	return dto.FromReservation(r, o, timezone.Location(h.tz))
}

func (h *ReservationHandler) renderAll(
	ctx context.Context,
	rs []models.Reservation,
) []dto.ReservationDTO {

	cache := make(map[uint]*models.Offering)
	out := make([]dto.ReservationDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, h.render(ctx, r, cache))
	}
	return out
}

func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return 0, false
	}
	return uint(v), true
}

// Health reports liveness together with the configured time zone.
func Health(tz string) gin.HandlerFunc {
	return func(c *gin.Context) {
		httpresp.OK(c, gin.H{
			"status":   "ok",
			"timezone": tz,
			"time":     timezone.NowIn(tz).Format(time.RFC3339),
		})
	}
}

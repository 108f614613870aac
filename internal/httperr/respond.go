package httperr

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
)

var notFoundMessages = map[string]string{
	"reservation": "Agendamento não encontrado.",
	"offering":    "Serviço não encontrado.",
	"barber":      "Barbeiro não encontrado.",
	"client":      "Cliente não encontrado.",
}

// Respond maps an error from the scheduling core to its HTTP response.
// Unknown errors are logged and answered with 500.
func Respond(c *gin.Context, log *zap.Logger, err error) {
	var (
		notFound   *domain.NotFoundError
		conflict   *domain.SlotConflictError
		invalid    *domain.InvalidInputError
		transition *domain.InvalidTransitionError
	)

	switch {
	case errors.As(err, &notFound):
		msg, ok := notFoundMessages[notFound.Entity]
		if !ok {
			msg = "Registro não encontrado."
		}
		NotFound(c, notFound.Code(), msg)

	case errors.As(err, &conflict):
		WriteDetails(c, http.StatusConflict, conflict.Code(), "Horário indisponível.", gin.H{
			"reservation_id": conflict.ReservationID,
			"start_time":     conflict.Start.Format(time.RFC3339),
			"end_time":       conflict.End.Format(time.RFC3339),
		})

	case errors.As(err, &invalid):
		WriteDetails(c, http.StatusBadRequest, invalid.Code(), "Dados inválidos.", gin.H{
			"field":  invalid.Field,
			"reason": invalid.Reason,
		})

	case errors.As(err, &transition):
		WriteDetails(c, http.StatusConflict, transition.Code(), "Agendamento não pode ser alterado.", gin.H{
			"from": transition.From,
			"to":   transition.To,
		})

	case db.IsContention(err), errors.Is(err, context.DeadlineExceeded):
		log.Warn("barber calendar busy", zap.Error(err))
		Write(c, http.StatusServiceUnavailable, "barber_busy", "Agenda ocupada, tente novamente.")

	default:
		log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		Internal(c, "internal_error", "Erro interno.")
	}
}

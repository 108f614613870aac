package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// DBSink stores events in the audit_logs table. Replayed events with an
// already stored ID are ignored.
type DBSink struct {
	db *gorm.DB
}

func NewDBSink(db *gorm.DB) *DBSink {
	return &DBSink{db: db}
}

func (s *DBSink) Name() string { return "db" }

func (s *DBSink) Write(ctx context.Context, ev Event) error {
	row := models.AuditLog{
		EventID:   ev.ID,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Metadata:  encodeMetadata(ev.Metadata),
		CreatedAt: ev.OccurredAt,
	}

	return s.db.WithContext(ctx).
		Where(models.AuditLog{EventID: ev.ID}).
		FirstOrCreate(&row).Error
}

// LogSink writes events to the application log. Used when no database is
// configured.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, ev Event) error {
	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.String("action", ev.Action),
		zap.String("entity", ev.Entity),
		zap.Time("occurred_at", ev.OccurredAt),
	}
	if ev.EntityID != nil {
		fields = append(fields, zap.Uint("entity_id", *ev.EntityID))
	}
	if meta := encodeMetadata(ev.Metadata); meta != "" {
		fields = append(fields, zap.String("metadata", meta))
	}

	s.log.Info("audit", fields...)
	return nil
}

func encodeMetadata(metadata any) string {
	if metadata == nil {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

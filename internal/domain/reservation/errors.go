package reservation

import (
	"errors"
	"fmt"
	"time"
)

const (
	CodeNotFound          = "not_found"
	CodeSlotConflict      = "slot_conflict"
	CodeInvalidInput      = "invalid_input"
	CodeInvalidTransition = "invalid_state"
)

// Coded is implemented by every error the scheduling core returns to callers.
type Coded interface {
	error
	Code() string
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Code() string { return e.Entity + "_" + CodeNotFound }

func NotFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// SlotConflictError carries the interval that blocked the request so the
// caller can suggest another time.
type SlotConflictError struct {
	ReservationID uint
	Start         time.Time
	End           time.Time
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf(
		"slot conflicts with reservation %d (%s - %s)",
		e.ReservationID,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339),
	)
}

func (e *SlotConflictError) Code() string { return CodeSlotConflict }

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Code() string { return CodeInvalidInput }

func InvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move reservation from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Code() string { return CodeInvalidTransition }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsSlotConflict(err error) bool {
	var sc *SlotConflictError
	return errors.As(err, &sc)
}

func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}

func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}

const CodeOfferingInUse = "offering_in_use"

// OfferingInUseError rejects a catalog change that would move the
// intervals of reservations already booked on the offering.
type OfferingInUseError struct {
	OfferingID uint
	Field      string
}

func (e *OfferingInUseError) Error() string {
	return fmt.Sprintf("offering %d has reservations: %s cannot change", e.OfferingID, e.Field)
}

func (e *OfferingInUseError) Code() string { return CodeOfferingInUse }

func IsOfferingInUse(err error) bool {
	var oi *OfferingInUseError
	return errors.As(err, &oi)
}

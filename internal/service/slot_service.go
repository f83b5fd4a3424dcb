package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/metrics"
	"github.com/iliyamo/practice-booking/internal/model"
	"github.com/iliyamo/practice-booking/internal/repository"
)

// SlotStore is the persistence the slot service needs.  *repository.SlotRepo
// implements it.
type SlotStore interface {
	Create(ctx context.Context, s *model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	List(ctx context.Context, f repository.SlotFilter) ([]model.Slot, error)
	DeleteUnbooked(ctx context.Context, id string) (int64, error)
	DeleteMatching(ctx context.Context, f repository.SlotFilter) (int64, error)
	SetActive(ctx context.Context, id string, active bool) error
	Reserve(ctx context.Context, slotID string, b *model.Booking) error
}

// SlotService implements slot listing, the admin operations and
// reservations.
type SlotService struct {
	store SlotStore
	log   zerolog.Logger
	loc   *time.Location
	now   func() time.Time
}

// NewSlotService wires a SlotService.  loc decides the calendar date used
// as "today" by Cleanup; nil means time.Local.
func NewSlotService(store SlotStore, log zerolog.Logger, loc *time.Location) *SlotService {
	if loc == nil {
		loc = time.Local
	}
	return &SlotService{
		store: store,
		log:   log.With().Str("component", "slots").Logger(),
		loc:   loc,
		now:   time.Now,
	}
}

// CreateSlotsInput is the admin request for creating slots on one date.
type CreateSlotsInput struct {
	Date  string   `json:"date" validate:"required,slotdate"`
	Times []string `json:"times" validate:"required,min=1,dive,slottime"`
}

// CreateResult reports the slots actually inserted.  Pairs that already
// existed are counted in Skipped.
type CreateResult struct {
	Slots   []model.Slot
	Skipped int
}

// Count is the number of created slots.
func (r CreateResult) Count() int { return len(r.Slots) }

// Message is the human readable summary shown in the admin panel.
func (r CreateResult) Message() string {
	return CreatedMessage(r.Count())
}

// CreatedMessage formats the create summary for n new slots.
func CreatedMessage(n int) string {
	if n == 0 {
		return "No slots created"
	}
	return strconv.Itoa(n) + " slots created successfully"
}

// Create inserts one active, unbooked slot per time on in.Date.  Every
// input is validated before anything is written.  A pair that already
// exists (including a repeat inside in.Times) is skipped; any other store
// error aborts the batch and is returned, leaving earlier inserts in place.
func (s *SlotService) Create(ctx context.Context, in CreateSlotsInput) (CreateResult, error) {
	if err := validateStruct(in); err != nil {
		return CreateResult{}, err
	}

	res := CreateResult{Slots: make([]model.Slot, 0, len(in.Times))}
	for _, t := range in.Times {
		slot := &model.Slot{Date: in.Date, Time: t, IsActive: true}
		err := s.store.Create(ctx, slot)
		switch {
		case err == nil:
			res.Slots = append(res.Slots, *slot)
		case errors.Is(err, repository.ErrDuplicateSlot):
			res.Skipped++
			s.log.Debug().Str("date", in.Date).Str("time", t).Msg("slot exists, skipped")
		default:
			metrics.AddSlotEvent("created", res.Count())
			s.log.Error().Err(err).Str("date", in.Date).Str("time", t).
				Int("created", res.Count()).Msg("create slots aborted")
			return CreateResult{}, fmt.Errorf("create slot %s %s: %w", in.Date, t, err)
		}
	}

	metrics.AddSlotEvent("created", res.Count())
	metrics.AddSlotEvent("duplicate", res.Skipped)
	s.log.Info().Str("date", in.Date).Int("created", res.Count()).Int("skipped", res.Skipped).Msg("slots created")
	return res, nil
}

// List returns active slots ordered by (date, time), each with its most
// recent booking.  An empty date lists every date.
func (s *SlotService) List(ctx context.Context, date string) ([]model.Slot, error) {
	date = strings.TrimSpace(date)
	if date != "" {
		if err := model.ValidateDate(date); err != nil {
			return nil, &ValidationError{Fields: map[string]string{"date": err.Error()}}
		}
	}
	slots, err := s.store.List(ctx, repository.SlotFilter{Date: date, Active: repository.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// Availability lists active slots and groups the unbooked ones by date.
func (s *SlotService) Availability(ctx context.Context) (Availability, error) {
	slots, err := s.List(ctx, "")
	if err != nil {
		return Availability{}, err
	}
	return GroupAvailable(slots), nil
}

// Delete removes an unbooked slot.  It returns ErrSlotNotFound when the
// slot is absent and ErrSlotBooked when it has a booking.
func (s *SlotService) Delete(ctx context.Context, id string) error {
	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if slot.IsBooked {
		return ErrSlotBooked
	}
	n, err := s.store.DeleteUnbooked(ctx, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if n == 0 {
		// lost a race with a reservation or another delete
		if _, err := s.store.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotBooked
	}
	metrics.AddSlotEvent("deleted", 1)
	s.log.Info().Str("slot_id", id).Str("date", slot.Date).Str("time", slot.Time).Msg("slot deleted")
	return nil
}

// Today is the current calendar date in the service location.
func (s *SlotService) Today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

// Cleanup deletes every unbooked slot dated before today and returns how
// many were removed.  Running it twice in a day removes nothing the second
// time.
func (s *SlotService) Cleanup(ctx context.Context) (int64, error) {
	today := s.Today()
	n, err := s.store.DeleteMatching(ctx, repository.SlotFilter{
		DateBefore: today,
		Booked:     repository.Bool(false),
	})
	if err != nil {
		return 0, fmt.Errorf("cleanup slots: %w", err)
	}
	metrics.AddSlotEvent("cleaned", int(n))
	s.log.Info().Str("before", today).Int64("deleted", n).Msg("past slots cleaned up")
	return n, nil
}

// SetActive shows or hides a slot and returns its new state.
func (s *SlotService) SetActive(ctx context.Context, id string, active bool) (*model.Slot, error) {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("set slot active: %w", err)
	}
	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("slot_id", id).Bool("active", active).Msg("slot visibility changed")
	return slot, nil
}

// ReserveInput holds the client details of a reservation.
type ReserveInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"required,max=50"`
}

// Reserve books the slot for the client.  Only one of several concurrent
// reservations of the same slot succeeds; the others get
// ErrSlotUnavailable.  Absent or hidden slots give ErrSlotNotFound.
func (s *SlotService) Reserve(ctx context.Context, slotID string, in ReserveInput) (*model.Booking, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	b := &model.Booking{Name: in.Name, Email: in.Email, Phone: in.Phone, Status: model.BookingPending}
	if err := s.store.Reserve(ctx, slotID, b); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		case errors.Is(err, repository.ErrSlotAlreadyBooked):
			metrics.AddSlotEvent("reserve_conflict", 1)
			return nil, ErrSlotUnavailable
		default:
			return nil, fmt.Errorf("reserve slot: %w", err)
		}
	}
	metrics.AddSlotEvent("reserved", 1)
	s.log.Info().Str("slot_id", slotID).Str("booking_id", b.ID).Msg("slot reserved")
	return b, nil
}

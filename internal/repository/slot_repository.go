package repository // repository defines data access for slots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/practice-booking/internal/model"
)

// SlotRepo provides methods to work with slots in the database.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo {
	return &SlotRepo{db: db}
}

const slotColumns = `s.id, s.slot_date, s.slot_time, s.is_booked, s.booked_by, s.is_active, s.created_at`

// Create inserts a single slot.  An empty ID is replaced with a fresh UUID
// and CreatedAt is set to now.  A (date, time) collision returns
// ErrDuplicateSlot; the unique index decides, not a prior read.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO slots (id, slot_date, slot_time, is_booked, booked_by, is_active, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Date, s.Time, s.IsBooked, s.BookedBy, s.IsActive, s.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s %s", ErrDuplicateSlot, s.Date, s.Time)
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// GetByID retrieves a slot by its id without its booking.
func (r *SlotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	q := `SELECT ` + slotColumns + ` FROM slots s WHERE s.id = ?`
	var (
		s        model.Slot
		bookedBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.Date, &s.Time, &s.IsBooked, &bookedBy, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if bookedBy.Valid {
		s.BookedBy = &bookedBy.String
	}
	return &s, nil
}

// List returns the slots matching f ordered by (date, time).  Each slot
// carries the most recent booking that references it, if any: the join is
// ordered by booking created_at then id, both descending, and only the
// first row per slot is kept.
func (r *SlotRepo) List(ctx context.Context, f SlotFilter) ([]model.Slot, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	where, args := f.where("s")
	q := `SELECT ` + slotColumns + `,
	             b.id, b.name, b.email, b.phone, b.status, b.created_at
	      FROM slots s
	      LEFT JOIN bookings b ON b.slot_id = s.id
	      WHERE ` + where + `
	      ORDER BY s.slot_date, s.slot_time, b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	result := make([]model.Slot, 0)
	for rows.Next() {
		var (
			s        model.Slot
			bookedBy sql.NullString
			b        bookingRow
		)
		if err := rows.Scan(
			&s.ID, &s.Date, &s.Time, &s.IsBooked, &bookedBy, &s.IsActive, &s.CreatedAt,
			&b.ID, &b.Name, &b.Email, &b.Phone, &b.Status, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if n := len(result); n > 0 && result[n-1].ID == s.ID {
			continue // older booking of the same slot
		}
		if bookedBy.Valid {
			s.BookedBy = &bookedBy.String
		}
		s.Booking = b.summary()
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return result, nil
}

// DeleteUnbooked hard-deletes the slot if it is not booked and returns the
// number of rows removed.  Zero means the slot is absent or booked.
func (r *SlotRepo) DeleteUnbooked(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ? AND is_booked = ?`, id, false)
	if err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}
	return res.RowsAffected()
}

// DeleteMatching removes every slot matching f and returns the count.  An
// empty filter is refused.
func (r *SlotRepo) DeleteMatching(ctx context.Context, f SlotFilter) (int64, error) {
	if f.IsEmpty() {
		return 0, ErrEmptyFilter
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	where, args := f.where("")
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete slots: %w", err)
	}
	return res.RowsAffected()
}

// SetActive toggles the soft-delete flag.
func (r *SlotRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE slots SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 when the value is unchanged, so confirm existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Reserve atomically marks the slot booked and stores b as its booking.
// The conditional UPDATE is the guard: of two concurrent reservations only
// one sees a changed row.  Absent or inactive slots give ErrSlotNotFound,
// booked ones ErrSlotAlreadyBooked.
func (r *SlotRepo) Reserve(ctx context.Context, slotID string, b *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	b.SlotID = slotID
	b.CreatedAt, b.UpdatedAt = now, now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reserve: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE slots SET is_booked = ?, booked_by = ? WHERE id = ? AND is_booked = ? AND is_active = ?`,
		true, b.ID, slotID, false, true)
	if err != nil {
		return fmt.Errorf("mark slot booked: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var booked, active bool
		err := tx.QueryRowContext(ctx, `SELECT is_booked, is_active FROM slots WHERE id = ?`, slotID).Scan(&booked, &active)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrSlotNotFound
		case err != nil:
			return fmt.Errorf("check slot: %w", err)
		case !active:
			return ErrSlotNotFound
		default:
			return ErrSlotAlreadyBooked
		}
	}
	if err := insertBooking(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reserve: %w", err)
	}
	return nil
}

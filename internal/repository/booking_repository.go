package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/practice-booking/internal/model"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertBooking stores b.  Reserve calls it inside its transaction.
func insertBooking(ctx context.Context, ex execer, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, slot_id, name, email, phone, payment_id, status, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, q,
		b.ID, b.SlotID, b.Name, b.Email, b.Phone, b.PaymentID, string(b.Status), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// bookingRow receives the nullable booking columns of the slot listing join.
type bookingRow struct {
	ID        sql.NullString
	Name      sql.NullString
	Email     sql.NullString
	Phone     sql.NullString
	Status    sql.NullString
	CreatedAt sql.NullTime
}

func (b bookingRow) summary() *model.BookingSummary {
	if !b.ID.Valid {
		return nil
	}
	return &model.BookingSummary{
		ID:        b.ID.String,
		Name:      b.Name.String,
		Email:     b.Email.String,
		Phone:     b.Phone.String,
		Status:    model.BookingStatus(b.Status.String),
		CreatedAt: b.CreatedAt.Time,
	}
}

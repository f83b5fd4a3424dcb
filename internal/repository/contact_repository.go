package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/practice-booking/internal/model"
)

// ContactRepo persists contact form submissions.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo constructs a ContactRepo with the given DB handle.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts c, filling its ID and CreatedAt.  Languages are stored as a
// JSON array.
func (r *ContactRepo) Create(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)
	langs, err := json.Marshal(c.Languages)
	if err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}
	var email sql.NullString
	if c.Email != "" {
		email = sql.NullString{String: c.Email, Valid: true}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, languages, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, email, c.Phone, string(langs), c.Message, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// List returns up to limit contacts, newest first.  A non-positive limit
// returns all of them.
func (r *ContactRepo) List(ctx context.Context, limit int) ([]model.Contact, error) {
	q := `SELECT id, name, email, phone, languages, message, created_at
	      FROM contacts
	      ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Contact, 0)
	for rows.Next() {
		var (
			c     model.Contact
			email sql.NullString
			langs string
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &c.Phone, &langs, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Email = email.String
		if err := json.Unmarshal([]byte(langs), &c.Languages); err != nil {
			return nil, fmt.Errorf("decode languages of %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

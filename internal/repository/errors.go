// Package repository holds the SQL data access layer.  The sentinel errors
// below let higher layers tell expected outcomes (missing rows, uniqueness
// conflicts) apart from store failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrSlotNotFound is returned when no slot has the requested id.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrDuplicateSlot is returned by Create when (date, time) already
	// exists.  Callers creating in bulk skip it.
	ErrDuplicateSlot = errors.New("duplicate slot")

	// ErrSlotAlreadyBooked is returned by Reserve when the slot was booked
	// first by someone else.
	ErrSlotAlreadyBooked = errors.New("slot already booked")

	// ErrInvalidFilter wraps a SlotFilter validation failure.
	ErrInvalidFilter = errors.New("invalid slot filter")

	// ErrEmptyFilter guards bulk deletes against matching every row.
	ErrEmptyFilter = errors.New("bulk delete requires at least one condition")
)

// mysql duplicate entry
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique-constraint violation from
// either supported driver.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

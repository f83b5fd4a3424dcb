package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/practice-booking/internal/model"
)

// SlotFilter selects slots by typed conditions joined with AND.  Zero
// fields are ignored.
type SlotFilter struct {
	Date       string // date equals (YYYY-MM-DD)
	DateBefore string // date strictly before (YYYY-MM-DD)
	Active     *bool  // is_active equals
	Booked     *bool  // is_booked equals
}

// Bool returns a pointer to b for use in SlotFilter.
func Bool(b bool) *bool { return &b }

// Validate checks the date conditions.
func (f SlotFilter) Validate() error {
	if f.Date != "" {
		if err := model.ValidateDate(f.Date); err != nil {
			return fmt.Errorf("%w: date: %v", ErrInvalidFilter, err)
		}
	}
	if f.DateBefore != "" {
		if err := model.ValidateDate(f.DateBefore); err != nil {
			return fmt.Errorf("%w: date before: %v", ErrInvalidFilter, err)
		}
	}
	return nil
}

// IsEmpty reports whether the filter has no conditions.
func (f SlotFilter) IsEmpty() bool {
	return f.Date == "" && f.DateBefore == "" && f.Active == nil && f.Booked == nil
}

// where renders the WHERE clause (without the keyword) and its arguments.
// alias, when set, qualifies the column names.
func (f SlotFilter) where(alias string) (string, []any) {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	var (
		conds []string
		args  []any
	)
	if f.Date != "" {
		conds = append(conds, col("slot_date")+" = ?")
		args = append(args, f.Date)
	}
	if f.DateBefore != "" {
		conds = append(conds, col("slot_date")+" < ?")
		args = append(args, f.DateBefore)
	}
	if f.Active != nil {
		conds = append(conds, col("is_active")+" = ?")
		args = append(args, *f.Active)
	}
	if f.Booked != nil {
		conds = append(conds, col("is_booked")+" = ?")
		args = append(args, *f.Booked)
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}

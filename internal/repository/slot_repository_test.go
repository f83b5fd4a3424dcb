package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/practice-booking/internal/config"
	"github.com/iliyamo/practice-booking/internal/database"
	"github.com/iliyamo/practice-booking/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))
	t.Cleanup(func() { db.Close() })
	return db
}

func createSlot(t *testing.T, repo *SlotRepo, date, tm string) *model.Slot {
	t.Helper()
	s := &model.Slot{Date: date, Time: tm, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSlotRepo_CreateAndGet(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	s := createSlot(t, repo, "2025-03-10", "09:00-09:30")
	assert.Len(t, s.ID, 36)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", got.Date)
	assert.Equal(t, "09:00-09:30", got.Time)
	assert.False(t, got.IsBooked)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.BookedBy)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSlotRepo_CreateDuplicate(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	createSlot(t, repo, "2025-03-10", "09:00-09:30")
	err := repo.Create(ctx, &model.Slot{Date: "2025-03-10", Time: "09:00-09:30", IsActive: true})
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	slots, err := repo.List(ctx, SlotFilter{})
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestSlotRepo_ConcurrentCreateKeepsPairUnique(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &model.Slot{Date: "2025-03-10", Time: "10:00-10:30", IsActive: true})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, ErrDuplicateSlot) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, duplicates)
}

func TestSlotRepo_ListOrderAndFilter(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	createSlot(t, repo, "2025-01-02", "09:00-09:30")
	createSlot(t, repo, "2025-01-01", "10:00-10:30")
	createSlot(t, repo, "2025-01-01", "09:00-09:30")
	hidden := createSlot(t, repo, "2025-01-01", "11:00-11:30")
	require.NoError(t, repo.SetActive(ctx, hidden.ID, false))

	all, err := repo.List(ctx, SlotFilter{Active: Bool(true)})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2025-01-01 09:00-09:30", "2025-01-01 10:00-10:30", "2025-01-02 09:00-09:30"},
		[]string{all[0].Date + " " + all[0].Time, all[1].Date + " " + all[1].Time, all[2].Date + " " + all[2].Time})

	day, err := repo.List(ctx, SlotFilter{Date: "2025-01-02", Active: Bool(true)})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "2025-01-02", day[0].Date)

	_, err = repo.List(ctx, SlotFilter{Date: "01/02/2025"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestSlotRepo_ListPicksMostRecentBooking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepo(db)
	ctx := context.Background()

	s := createSlot(t, repo, "2025-01-01", "09:00-09:30")
	createSlot(t, repo, "2025-01-01", "10:00-10:30")

	older := &model.Booking{ID: "b-older", SlotID: s.ID, Name: "Old", Email: "old@example.com", Phone: "1",
		Status: model.BookingCancelled, CreatedAt: time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)}
	older.UpdatedAt = older.CreatedAt
	require.NoError(t, insertBooking(ctx, db, older))
	newer := &model.Booking{ID: "b-newer", SlotID: s.ID, Name: "New", Email: "new@example.com", Phone: "2",
		Status: model.BookingPending, CreatedAt: time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC)}
	newer.UpdatedAt = newer.CreatedAt
	require.NoError(t, insertBooking(ctx, db, newer))

	slots, err := repo.List(ctx, SlotFilter{})
	require.NoError(t, err)
	require.Len(t, slots, 2)

	require.NotNil(t, slots[0].Booking)
	assert.Equal(t, "b-newer", slots[0].Booking.ID)
	assert.Equal(t, "New", slots[0].Booking.Name)
	assert.Equal(t, model.BookingPending, slots[0].Booking.Status)
	assert.Nil(t, slots[1].Booking)
}

func TestSlotRepo_DeleteUnbooked(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	free := createSlot(t, repo, "2025-01-01", "09:00-09:30")
	taken := createSlot(t, repo, "2025-01-01", "10:00-10:30")
	require.NoError(t, repo.Reserve(ctx, taken.ID, &model.Booking{Name: "A", Email: "a@example.com", Phone: "1"}))

	n, err := repo.DeleteUnbooked(ctx, free.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteUnbooked(ctx, taken.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.GetByID(ctx, taken.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBooked)
}

func TestSlotRepo_DeleteMatching(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	createSlot(t, repo, "2025-01-01", "09:00-09:30")
	createSlot(t, repo, "2025-01-02", "09:00-09:30")
	booked := createSlot(t, repo, "2025-01-02", "10:00-10:30")
	keep := createSlot(t, repo, "2025-01-03", "09:00-09:30")
	require.NoError(t, repo.Reserve(ctx, booked.ID, &model.Booking{Name: "A", Email: "a@example.com", Phone: "1"}))

	_, err := repo.DeleteMatching(ctx, SlotFilter{})
	assert.ErrorIs(t, err, ErrEmptyFilter)

	n, err := repo.DeleteMatching(ctx, SlotFilter{DateBefore: "2025-01-03", Booked: Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.List(ctx, SlotFilter{})
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, booked.ID, left[0].ID)
	assert.Equal(t, keep.ID, left[1].ID)
}

func TestSlotRepo_SetActive(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	s := createSlot(t, repo, "2025-01-01", "09:00-09:30")
	require.NoError(t, repo.SetActive(ctx, s.ID, false))
	require.NoError(t, repo.SetActive(ctx, s.ID, false))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.SetActive(ctx, "missing", true), ErrSlotNotFound)
}

func TestSlotRepo_Reserve(t *testing.T) {
	repo := NewSlotRepo(setupTestDB(t))
	ctx := context.Background()

	s := createSlot(t, repo, "2025-01-01", "09:00-09:30")
	b := &model.Booking{Name: "Client", Email: "client@example.com", Phone: "555"}
	require.NoError(t, repo.Reserve(ctx, s.ID, b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingPending, b.Status)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBooked)
	require.NotNil(t, got.BookedBy)
	assert.Equal(t, b.ID, *got.BookedBy)

	err = repo.Reserve(ctx, s.ID, &model.Booking{Name: "Late", Email: "late@example.com", Phone: "1"})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	err = repo.Reserve(ctx, "missing", &model.Booking{Name: "X", Email: "x@example.com", Phone: "1"})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	inactive := createSlot(t, repo, "2025-01-01", "10:00-10:30")
	require.NoError(t, repo.SetActive(ctx, inactive.ID, false))
	err = repo.Reserve(ctx, inactive.ID, &model.Booking{Name: "X", Email: "x@example.com", Phone: "1"})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	// the losing reservations left no booking rows behind
	slots, err := repo.List(ctx, SlotFilter{})
	require.NoError(t, err)
	require.NotNil(t, slots[0].Booking)
	assert.Equal(t, b.ID, slots[0].Booking.ID)
	assert.Nil(t, slots[1].Booking)
}

func TestSlotRepo_ClosedDB(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepo(db)
	db.Close()
	ctx := context.Background()

	err := repo.Create(ctx, &model.Slot{Date: "2025-01-01", Time: "09:00-09:30"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateSlot)

	_, err = repo.List(ctx, SlotFilter{})
	assert.Error(t, err)
	_, err = repo.DeleteMatching(ctx, SlotFilter{Booked: Bool(false)})
	assert.Error(t, err)
}

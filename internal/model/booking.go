package model

import "time"

// BookingStatus is stored but never transitioned by this service.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a client's reservation of a slot.
type Booking struct {
	ID        string
	SlotID    string
	Name      string
	Email     string
	Phone     string
	PaymentID *string
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingSummary is the part of a booking shown next to a slot in the
// admin listing.
type BookingSummary struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    BookingStatus
	CreatedAt time.Time
}

package model

import "time"

// Booking statuses.  A booking is created as StatusBooked and moves to
// StatusExpired the first time verification observes that its validity
// window has passed, or to StatusCancelled when the museum owner
// cancels it.  No other transitions exist.
const (
	StatusBooked    = "booked"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Payment statuses.  Payment is not processed by this service; bookings
// are written with PaymentCompleted.  The other values exist so the
// schema matches what a future payment integration would need.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Booking sources record which flow created the booking.
const (
	SourceAPI  = "api"
	SourceChat = "chat"
)

// Attendee age groups.
const (
	AgeGroupChild  = "child"
	AgeGroupAdult  = "adult"
	AgeGroupSenior = "senior"
)

// ValidAgeGroup reports whether s is one of the accepted attendee age
// groups.
func ValidAgeGroup(s string) bool {
	switch s {
	case AgeGroupChild, AgeGroupAdult, AgeGroupSenior:
		return true
	}
	return false
}

// Booking records a ticket purchase for a museum.  The Reference is a
// UUID generated before the row is inserted so the QR payload, which
// encodes a verification URL containing it, can be stored in the same
// write as the booking itself.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – public UUID used in verification URLs and file names.
//  MuseumID       – museum the tickets are for.
//  UserID         – purchaser; nil for anonymous chat bookings.
//  TotalCostCents – sum of all section allocation subtotals.
//  QRPayload      – data URL of the QR PNG encoding the verify link.
//  ValidUntil     – end of the validity window; strictly after CreatedAt.
//  Status         – booked, expired or cancelled.
//  PaymentStatus  – pending, completed or failed.
//  Source         – api or chat.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	Reference      string    // bookings.reference
	MuseumID       uint64    // bookings.museum_id
	UserID         *uint64   // bookings.user_id (nullable)
	TotalCostCents uint32    // bookings.total_cost_cents
	QRPayload      string    // bookings.qr_payload
	ValidUntil     time.Time // bookings.valid_until
	Status         string    // bookings.status
	PaymentStatus  string    // bookings.payment_status
	Source         string    // bookings.source
	CreatedAt      time.Time // bookings.created_at
	UpdatedAt      time.Time // bookings.updated_at
}

// Expired reports whether the booking's validity window has passed at
// the given instant.  The status column lags this check: the
// conditional flip to StatusExpired happens on the first verification
// after the window closes.
func (b *Booking) Expired(now time.Time) bool {
	return now.After(b.ValidUntil)
}

// Attendee is a named person included in a booking.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – booking the attendee belongs to.
//  Name      – attendee name.
//  AgeGroup  – child, adult or senior.
type Attendee struct {
	ID        uint64 // booking_attendees.id
	BookingID uint64 // booking_attendees.booking_id
	Name      string // booking_attendees.name
	AgeGroup  string // booking_attendees.age_group
}

// BookingSection allocates a quantity of tickets for one museum
// section within a booking, together with the server-derived subtotal.
// Flat-priced bookings store a single allocation with a nil SectionID.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – booking the allocation belongs to.
//  SectionID – section being booked; nil for flat entry tickets.
//  Quantity  – number of tickets in this allocation.
//  CostCents – quantity × the section's stored price, in cents.
type BookingSection struct {
	ID        uint64  // booking_sections.id
	BookingID uint64  // booking_sections.booking_id
	SectionID *uint64 // booking_sections.section_id (nullable)
	Quantity  uint32  // booking_sections.quantity
	CostCents uint32  // booking_sections.cost_cents
}

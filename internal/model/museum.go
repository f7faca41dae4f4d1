package model

import "time"

// Museum represents a venue onboarded by an owner.  A museum either
// sells a single flat entry ticket (IsSubTicketing false, priced by
// EntryPriceCents) or per-section tickets (IsSubTicketing true, priced
// by the rows in `sections`).  This struct corresponds to a row in the
// `museums` table.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – user ID of the museum owner.
//  Name            – display name of the museum.
//  Address         – street address.
//  City            – city the museum is located in.
//  State           – state/region the museum is located in.
//  PhoneNumber     – contact phone number.
//  Email           – contact email address.
//  Timings         – free-text opening hours (e.g. "8am to 10pm except Friday").
//  GoogleMapsLink  – link to the museum's location.
//  Instagram       – optional social link.
//  Facebook        – optional social link.
//  Website         – optional website URL.
//  About           – long-form description.
//  Images          – image URLs, stored as a JSON array in one column.
//  IsSubTicketing  – true when the museum prices per section.
//  EntryPriceCents – flat entry ticket price in cents.
//  CreatedAt       – timestamp when the museum was onboarded.
//  UpdatedAt       – timestamp of last update.
type Museum struct {
	ID              uint64    // museums.id
	OwnerID         uint64    // museums.owner_id
	Name            string    // museums.name
	Address         string    // museums.address
	City            string    // museums.city
	State           string    // museums.state
	PhoneNumber     string    // museums.phone_number
	Email           string    // museums.email
	Timings         string    // museums.timings
	GoogleMapsLink  string    // museums.google_maps_link
	Instagram       string    // museums.instagram
	Facebook        string    // museums.facebook
	Website         string    // museums.website
	About           string    // museums.about
	Images          []string  // museums.images (JSON array)
	IsSubTicketing  bool      // museums.is_sub_ticketing
	EntryPriceCents uint32    // museums.entry_price_cents
	CreatedAt       time.Time // museums.created_at
	UpdatedAt       time.Time // museums.updated_at
}

// Section is a priced sub-category of museum ticket, such as an
// exhibit wing.  Sections only matter when the owning museum has
// sub-ticketing enabled.
//
// Fields:
//  ID         – primary key identifier.
//  MuseumID   – museum the section belongs to.
//  Name       – section name (unique per museum).
//  PriceCents – ticket price for this section in cents.
type Section struct {
	ID         uint64 // sections.id
	MuseumID   uint64 // sections.museum_id
	Name       string // sections.name
	PriceCents uint32 // sections.price_cents
}

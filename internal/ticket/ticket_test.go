package ticket_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
	"github.com/zeno-labs/museum-companion/internal/ticket"
)

func TestSubTotal(t *testing.T) {
	require.Equal(t, uint64(0), ticket.SubTotal(0, 1500))
	require.Equal(t, uint64(1500), ticket.SubTotal(1, 1500))
	require.Equal(t, uint64(4500), ticket.SubTotal(3, 1500))
}

func TestSubTotalLargeInputsDoNotWrap(t *testing.T) {
	// 3 million tickets at 1500.00 each overflows 32-bit cents; the
	// product must come back exact, not truncated.
	require.Equal(t, uint64(450_000_000_000), ticket.SubTotal(3_000_000, 150_000))
}

func TestTotalCost(t *testing.T) {
	total := ticket.TotalCost([]model.BookingSection{
		{Quantity: 2, CostCents: 1000},
		{Quantity: 1, CostCents: 2500},
		{Quantity: 1, CostCents: 0},
	})
	require.Equal(t, uint64(3500), total)
	require.Equal(t, uint64(0), ticket.TotalCost(nil))
}

func TestTotalCostSumsWithoutWrapping(t *testing.T) {
	// Two near-maximum allocations sum past 32 bits.
	total := ticket.TotalCost([]model.BookingSection{
		{Quantity: 1, CostCents: 4_000_000_000},
		{Quantity: 1, CostCents: 4_000_000_000},
	})
	require.Equal(t, uint64(8_000_000_000), total)
	require.Greater(t, total, ticket.MaxTotalCents)
}

func TestIssueFlatRejectsOversizedTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM museums WHERE id = \?`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "address", "city", "state", "phone_number", "email",
			"timings", "google_maps_link", "instagram", "facebook", "website", "about", "images",
			"is_sub_ticketing", "entry_price_cents", "created_at", "updated_at",
		}).AddRow(3, 1, "City History Museum", "", "", "", "", "",
			"", "", "", "", "", "", []byte(`[]`),
			false, uint32(4_000_000_000), now, now))

	issuer := ticket.NewIssuer(repository.NewMuseumRepo(db), repository.NewBookingRepo(db),
		"https://museums.example.com", t.TempDir())

	attendees := make([]model.Attendee, 50)
	for i := range attendees {
		attendees[i] = model.Attendee{Name: fmt.Sprintf("Guest %d", i+1), AgeGroup: model.AgeGroupAdult}
	}

	// 50 tickets at an absurd stored price blows past the booking cap;
	// the issuer must refuse instead of wrapping into a small charge.
	_, err = issuer.IssueFlat(context.Background(), 3, nil, "Chat guest", attendees, model.SourceChat)
	require.ErrorIs(t, err, ticket.ErrTotalTooLarge)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueFlatRejectsOversizedParty(t *testing.T) {
	issuer := &ticket.Issuer{}
	attendees := make([]model.Attendee, ticket.MaxQuantity+1)
	for i := range attendees {
		attendees[i] = model.Attendee{Name: "Guest", AgeGroup: model.AgeGroupAdult}
	}
	_, err := issuer.IssueFlat(context.Background(), 3, nil, "Chat guest", attendees, model.SourceChat)
	require.ErrorIs(t, err, ticket.ErrBadQuantity)
}

func TestVerifyURL(t *testing.T) {
	url := ticket.VerifyURL("https://museums.example.com", "abc-123")
	require.Equal(t, "https://museums.example.com/ticket/verify/abc-123", url)

	// Trailing slash on the base must not double up.
	url = ticket.VerifyURL("https://museums.example.com/", "abc-123")
	require.Equal(t, "https://museums.example.com/ticket/verify/abc-123", url)
}

func TestGenerateQR(t *testing.T) {
	png, dataURL, err := ticket.GenerateQR("https://museums.example.com/ticket/verify/abc-123")
	require.NoError(t, err)

	// PNG magic bytes.
	require.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
}

func TestRenderPDF(t *testing.T) {
	png, _, err := ticket.GenerateQR("https://museums.example.com/ticket/verify/abc-123")
	require.NoError(t, err)

	rc := ticket.Receipt{
		MuseumName: "City History Museum",
		Purchaser:  "Ada Lovelace",
		Reference:  "abc-123",
		TotalCost:  45.00,
		ValidUntil: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		Attendees:  []string{"Ada Lovelace (adult)", "Alan Turing (adult)"},
	}
	pdf, err := ticket.RenderPDF(rc, png)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestPDFName(t *testing.T) {
	require.Equal(t, "ticket-abc-123.pdf", ticket.PDFName("abc-123"))
}

func TestIssuerPDFURL(t *testing.T) {
	i := &ticket.Issuer{BaseURL: "https://museums.example.com"}
	require.Equal(t, "https://museums.example.com/public/ticket-abc-123.pdf", i.PDFURL("abc-123"))
}

package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
)

func newBookingRepo(t *testing.T) (*repository.BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewBookingRepo(db), mock
}

const bookedGuardUpdate = `UPDATE bookings SET status = ? WHERE reference = ? AND status = ?`

func TestMarkExpiredOnlyTouchesBookedRows(t *testing.T) {
	repo, mock := newBookingRepo(t)
	ref := "6f1c9f5e-1dc1-4f2a-9f6a-1f1d9b1c0001"

	// The status guard must be part of the statement so cancelled and
	// already-expired bookings are never rewritten.
	mock.ExpectExec(regexp.QuoteMeta(bookedGuardUpdate)).
		WithArgs(model.StatusExpired, ref, model.StatusBooked).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkExpired(context.Background(), ref))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkExpiredIsIdempotent(t *testing.T) {
	repo, mock := newBookingRepo(t)
	ref := "6f1c9f5e-1dc1-4f2a-9f6a-1f1d9b1c0002"

	// A booking that already left the booked state matches no rows;
	// the second and later transitions are silent no-ops.
	mock.ExpectExec(regexp.QuoteMeta(bookedGuardUpdate)).
		WithArgs(model.StatusExpired, ref, model.StatusBooked).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkExpired(context.Background(), ref))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForOwnerRejectsForeignOwner(t *testing.T) {
	repo, mock := newBookingRepo(t)
	ref := "6f1c9f5e-1dc1-4f2a-9f6a-1f1d9b1c0003"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.owner_id FROM bookings b JOIN museums m ON m.id = b.museum_id WHERE b.reference = ?`)).
		WithArgs(ref).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(7))

	err := repo.CancelForOwner(context.Background(), ref, 8)
	require.ErrorIs(t, err, repository.ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForOwnerReportsAlreadyFinalised(t *testing.T) {
	repo, mock := newBookingRepo(t)
	ref := "6f1c9f5e-1dc1-4f2a-9f6a-1f1d9b1c0004"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.owner_id FROM bookings b JOIN museums m ON m.id = b.museum_id WHERE b.reference = ?`)).
		WithArgs(ref).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(bookedGuardUpdate)).
		WithArgs(model.StatusCancelled, ref, model.StatusBooked).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelForOwner(context.Background(), ref, 7)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForOwnerUnknownReference(t *testing.T) {
	repo, mock := newBookingRepo(t)
	ref := "6f1c9f5e-1dc1-4f2a-9f6a-1f1d9b1c0005"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT m.owner_id FROM bookings b JOIN museums m ON m.id = b.museum_id WHERE b.reference = ?`)).
		WithArgs(ref).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}))

	err := repo.CancelForOwner(context.Background(), ref, 7)
	require.ErrorIs(t, err, repository.ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

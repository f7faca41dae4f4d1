package repository_test

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/repository"
)

func newMuseumRepo(t *testing.T) (*repository.MuseumRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewMuseumRepo(db), mock
}

func TestSectionPricesReturnsStoredPrices(t *testing.T) {
	repo, mock := newMuseumRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, price_cents FROM sections WHERE museum_id = ? AND id IN (?,?)`)).
		WithArgs(3, 10, 11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_cents"}).
			AddRow(10, 1500).
			AddRow(11, 2000))

	prices, err := repo.SectionPrices(context.Background(), 3, []uint64{10, 11})
	require.NoError(t, err)
	require.Equal(t, map[uint64]uint32{10: 1500, 11: 2000}, prices)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionPricesRejectsForeignSection(t *testing.T) {
	repo, mock := newMuseumRepo(t)

	// Section 11 belongs to another museum, so the museum-scoped query
	// only returns section 10.  The whole request must be rejected.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, price_cents FROM sections WHERE museum_id = ? AND id IN (?,?)`)).
		WithArgs(3, 10, 11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_cents"}).
			AddRow(10, 1500))

	_, err := repo.SectionPrices(context.Background(), 3, []uint64{10, 11})
	require.ErrorIs(t, err, repository.ErrSectionMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionPricesRejectsUnknownSection(t *testing.T) {
	repo, mock := newMuseumRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, price_cents FROM sections WHERE museum_id = ? AND id IN (?)`)).
		WithArgs(3, 99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_cents"}))

	_, err := repo.SectionPrices(context.Background(), 3, []uint64{99})
	require.ErrorIs(t, err, repository.ErrSectionMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionPricesEmptyRequest(t *testing.T) {
	repo, _ := newMuseumRepo(t)

	prices, err := repo.SectionPrices(context.Background(), 3, nil)
	require.NoError(t, err)
	require.Empty(t, prices)
}

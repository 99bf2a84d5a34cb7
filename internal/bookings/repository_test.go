package bookings

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return NewRepository(db), mock
}

func TestTransitionStatusIsGuardedOnCurrentStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "bookings" SET .* WHERE \(?id = \$\d+ AND status = \$\d+\)?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TransitionStatus(context.Background(), id, StatusChange{
		From: StatusPending,
		To:   StatusConfirmed,
		At:   time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusLostRace(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.TransitionStatus(context.Background(), uuid.New(), StatusChange{
		From: StatusConfirmed,
		To:   StatusCancelled,
		At:   time.Now(),
	})

	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberExists(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings" WHERE booking_number = $1`)).
		WithArgs("BK2506011234").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := repo.NumberExists(context.Background(), "BK2506011234")

	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesOverlapFilter(t *testing.T) {
	repo, mock := newMockRepository(t)
	userID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE user_id = \$1 AND status = \$2 AND check_out > \$3 AND check_in <= \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE .* ORDER BY created_at DESC LIMIT \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_number", "status"}).
			AddRow(id.String(), "BK2506011234", "confirmed"))

	bookings, total, err := repo.List(context.Background(), BookingListQuery{
		Page:     1,
		Limit:    20,
		Status:   "confirmed",
		UserID:   userID.String(),
		DateFrom: "2025-06-01",
		DateTo:   "2025-06-30",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookings, 1)
	assert.Equal(t, StatusConfirmed, bookings[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGuardsOnStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "bookings" WHERE \(?id = \$1 AND status = \$2\)?`).
		WithArgs(id, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id, StatusConfirmed)

	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

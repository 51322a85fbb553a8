package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "short_code", "display_name", "sleep_time", "slot_key", "tz_offset_min",
		"streak", "total_days", "last_checkin_date", "today_status", "created_at", "updated_at",
	})
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*short_code,\s*display_name,\s*sleep_time,\s*slot_key,\s*tz_offset_min,\s*today_status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("u-1", "12345678", "", "22:30", "22:30", 0, models.TodayStatusNone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{ID: "u-1", ShortCode: "12345678", SleepTime: "22:30", SlotKey: "22:30", TodayStatus: models.TodayStatusNone}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_ShortCodeTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_short_code_key"})

	u := &models.User{ID: "u-1", ShortCode: "12345678", TodayStatus: models.TodayStatusNone}
	if err := repo.Create(context.Background(), u); !errors.Is(err, common.ErrorShortCodeTaken) {
		t.Fatalf("want common.ErrorShortCodeTaken, got %v", err)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	u := &models.User{ID: "u-1", ShortCode: "12345678", TodayStatus: models.TodayStatusNone}
	if err := repo.Create(context.Background(), u); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := userRows().AddRow("u-1", "12345678", "alice", "22:30", "22:30", 60, 3, 10, "20260824", "hit", now, now)
	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ShortCode != "12345678" || got.Streak != 3 || got.TodayStatus != models.TodayStatusHit {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByShortCode_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+users\s+WHERE\s+short_code\s*=\s*\$1\s*$`).
		WithArgs("00000000").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByShortCode(context.Background(), "00000000")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+display_name\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("ghost", "alice", "23:00", "23:00", 0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), "ghost", "alice", "23:00", "23:00", 0)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdateSummary_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+streak\s*=\s*\$2,\s*total_days\s*=\s*\$3,\s*last_checkin_date\s*=\s*\$4,\s*today_status\s*=\s*\$5.*WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("u-1", 4, 11, "20260825", models.TodayStatusHit).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &models.CheckinSummary{Streak: 4, TotalDays: 11, TodayStatus: models.TodayStatusHit, Date: "20260825"}
	if err := repo.UpdateSummary(context.Background(), "u-1", s); err != nil {
		t.Fatalf("UpdateSummary error: %v", err)
	}
}

func TestUpdateSummary_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+streak\s*=`).
		WillReturnError(errors.New("db down"))

	s := &models.CheckinSummary{Streak: 1, TotalDays: 1, TodayStatus: models.TodayStatusHit, Date: "20260825"}
	err := repo.UpdateSummary(context.Background(), "u-1", s)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

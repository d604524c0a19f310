package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

func newTestUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewUserRepo(db)
	repo.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	return repo, mock
}

func TestUserRepo_Create(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "hash", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	u := &model.User{Username: "alice", Email: "Alice@Example.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(11), u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"username", "users.uq_users_username", ErrDuplicateUsername},
		{"email", "users.uq_users_email", ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + tt.key + "'"})

			err := repo.Create(context.Background(), &model.User{Username: "emailfan", Email: "x@example.com"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserRepo_GetByUsername(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_staff", "is_active", "created_at", "updated_at"}).
		AddRow(3, "admin", "admin@example.com", "hash", true, true, created, created)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE username=? LIMIT 1")).
		WithArgs("admin").
		WillReturnRows(rows)

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.True(t, u.IsStaff)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserRepo_GetByIDNotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Taken(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(username=?),0)")).
		WithArgs("bob", "bob@example.com", "bob", "bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"u", "e"}).AddRow(0, 1))

	usernameTaken, emailTaken, err := repo.Taken(context.Background(), "bob", "BOB@example.com")
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.True(t, emailTaken)
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	repo := NewTokenRepo(db)
	repo.now = func() time.Time { return now }
	query := regexp.QuoteMeta("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1")

	mock.ExpectQuery(query).WithArgs("live").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(4, now.Add(time.Hour), nil))
	mock.ExpectQuery(query).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(4, now.Add(time.Hour), now))
	mock.ExpectQuery(query).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).AddRow(4, now.Add(-time.Minute), nil))
	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	id, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)

	for _, hash := range []string{"revoked", "expired", "missing"} {
		_, err := repo.ValidateRefresh(context.Background(), hash)
		assert.ErrorIs(t, err, ErrNotFound, hash)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_StoreAndRevoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	repo := NewTokenRepo(db)
	repo.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(uint64(4), "h", now.Add(time.Hour), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(now, "h").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=?")).
		WithArgs(now, "h").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.StoreRefresh(context.Background(), 4, "h", now.Add(time.Hour)))

	revoked, err := repo.RevokeByHash(context.Background(), "h")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.RevokeByHash(context.Background(), "h")
	require.NoError(t, err)
	assert.False(t, revoked, "no row matched revoked_at IS NULL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
)

func newMockUserRepo(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewUserRepository(NewBaseRepository(sqlxDB)), mock
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	phone := "+919876543210"
	user := &model.User{Phone: &phone, Role: model.RolePatient}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT \\* FROM users WHERE email").
		WithArgs("nobody@cityhospital.in").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@cityhospital.in")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateLoginStatePersistsLockout(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	id := uuid.New()
	until := time.Now().Add(15 * time.Minute)
	user := &model.User{
		Base:          model.Base{ID: id},
		LoginAttempts: 0,
		LockoutUntil:  &until,
	}

	mock.ExpectExec("UPDATE users SET").
		WithArgs(0, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLoginState(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLoginStateUnknownUser(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	user := &model.User{Base: model.Base{ID: uuid.New()}}
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLoginState(context.Background(), user)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdatePasswordClearsTemporaryFlags(t *testing.T) {
	repo, mock := newMockUserRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET").
		WithArgs("new-hash", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), id, "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyacare/platform-api/internal/model"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
)

func TestStaffLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	resp, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 7200, resp.ExpiresIn)
	assert.Equal(t, model.RoleDoctor, resp.User.Role)
	assert.Equal(t, model.PermissionsFor(model.RoleDoctor), resp.Permissions)
	assert.False(t, resp.FirstLogin)
	assert.False(t, resp.RequiresPasswordChange)

	claims, err := env.jwtSvc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.UserID, claims.UserID)
	assert.Equal(t, string(model.RoleDoctor), claims.Role)
}

func TestStaffLogin_EmailCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	_, err := env.svc.StaffLogin(context.Background(), "  Dr.Rao@CityHospital.IN ", "s3cretpass")
	assert.NoError(t, err)
}

func TestStaffLogin_UnknownDomain(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	// Unknown domains are rejected before credentials are even looked at.
	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@gmail.com", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.DomainNotAllowed())
}

func TestStaffLogin_MalformedEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.StaffLogin(context.Background(), "not-an-email", "whatever")
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
}

func TestStaffLogin_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	_, err := env.svc.StaffLogin(context.Background(), "nobody@cityhospital.in", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
}

func TestStaffLogin_WrongPasswordIncrementsAttempts(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "wrong")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
	assert.Equal(t, 1, env.users.byID[user.ID].LoginAttempts)

	// A successful login resets the counter.
	_, err = env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, 0, env.users.byID[user.ID].LoginAttempts)
	assert.NotNil(t, env.users.byID[user.ID].LastLoginAt)
}

func TestStaffLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	for i := 0; i < 5; i++ {
		_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "wrong")
		assert.ErrorIs(t, err, apperrors.InvalidCredentials())
	}
	require.NotNil(t, env.users.byID[user.ID].LockoutUntil)

	// Even the correct password is refused while the lockout holds.
	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.AccountLocked())
}

func TestStaffLogin_LockoutExpires(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	past := time.Now().Add(-time.Minute)
	env.users.byID[user.ID].LockoutUntil = &past

	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	assert.NoError(t, err)
	assert.Nil(t, env.users.byID[user.ID].LockoutUntil)
}

func TestStaffLogin_RoleMismatch(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	// The stored role no longer matches what the domain implies.
	env.users.byID[user.ID].Role = model.RolePharmacist

	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.InvalidRole())
}

func TestStaffLogin_WrongHospital(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	other := env.seedStaff(t, "admin@otherclinic.in", "s3cretpass", model.RoleDoctor)
	env.users.byID[user.ID].HospitalID = env.users.byID[other.ID].HospitalID

	_, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	assert.ErrorIs(t, err, apperrors.InvalidRole())
}

func TestStaffLogin_TemporaryPasswordFlags(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "admin@cityhospital.in", "temp-pass-123", model.RoleHospitalAdmin)
	env.users.byID[user.ID].PasswordIsTemporary = true
	env.users.byID[user.ID].ForcePasswordChange = true

	resp, err := env.svc.StaffLogin(context.Background(), "admin@cityhospital.in", "temp-pass-123")
	require.NoError(t, err)
	assert.True(t, resp.FirstLogin)
	assert.True(t, resp.RequiresPasswordChange)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	login, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	require.NoError(t, err)

	resp, err := env.svc.RefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)

	claims, err := env.jwtSvc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.UserID, claims.UserID)
	assert.Equal(t, string(model.RoleDoctor), claims.Role)
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedStaff(t, "dr.rao@cityhospital.in", "s3cretpass", model.RoleDoctor)

	login, err := env.svc.StaffLogin(context.Background(), "dr.rao@cityhospital.in", "s3cretpass")
	require.NoError(t, err)

	_, err = env.svc.RefreshToken(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
}

func TestRefreshToken_Garbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RefreshToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "admin@cityhospital.in", "old-password1", model.RoleHospitalAdmin)
	env.users.byID[user.ID].PasswordIsTemporary = true

	err := env.svc.ChangePassword(context.Background(), user.ID, "old-password1", "new-password1")
	require.NoError(t, err)
	assert.False(t, env.users.byID[user.ID].PasswordIsTemporary)

	_, err = env.svc.StaffLogin(context.Background(), "admin@cityhospital.in", "old-password1")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())

	_, err = env.svc.StaffLogin(context.Background(), "admin@cityhospital.in", "new-password1")
	assert.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedStaff(t, "admin@cityhospital.in", "old-password1", model.RoleHospitalAdmin)

	err := env.svc.ChangePassword(context.Background(), user.ID, "not-the-password", "new-password1")
	assert.ErrorIs(t, err, apperrors.InvalidCredentials())
}

package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	"github.com/arogyacare/platform-api/internal/service/otp"
	pkgauth "github.com/arogyacare/platform-api/pkg/auth"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/security"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User
	byPhone map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*model.User),
		byEmail: make(map[string]*model.User),
		byPhone: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) add(u *model.User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.byID[u.ID] = u
	if u.Email != nil {
		f.byEmail[*u.Email] = u
	}
	if u.Phone != nil {
		f.byPhone[*u.Phone] = u
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.add(user)
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	u, ok := f.byPhone[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateLoginState(ctx context.Context, user *model.User) error {
	u, ok := f.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.LoginAttempts = user.LoginAttempts
	u.LockoutUntil = user.LockoutUntil
	u.LastLoginAt = user.LastLoginAt
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = &hash
	u.PasswordIsTemporary = false
	u.ForcePasswordChange = false
	return nil
}

type fakeHospitalRepo struct {
	domains   map[string]*model.HospitalDomain
	hospitals map[uuid.UUID]*model.Hospital
}

func newFakeHospitalRepo() *fakeHospitalRepo {
	return &fakeHospitalRepo{
		domains:   make(map[string]*model.HospitalDomain),
		hospitals: make(map[uuid.UUID]*model.Hospital),
	}
}

func (f *fakeHospitalRepo) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return h, nil
}

func (f *fakeHospitalRepo) GetDomain(ctx context.Context, domain string) (*model.HospitalDomain, error) {
	d, ok := f.domains[domain]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeHospitalRepo) CreateWithAdmin(ctx context.Context, hospital *model.Hospital, domains []model.HospitalDomain, admin *model.User) error {
	if hospital.ID == uuid.Nil {
		hospital.ID = uuid.New()
	}
	f.hospitals[hospital.ID] = hospital
	for i := range domains {
		d := domains[i]
		d.HospitalID = hospital.ID
		f.domains[d.Domain] = &d
	}
	return nil
}

func (f *fakeHospitalRepo) CreateDoctor(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	return nil
}

// fakeOTPRepo mirrors the in-memory repo used by the otp package tests.
type fakeOTPRepo struct {
	codes map[string]*model.OTPCode
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{codes: make(map[string]*model.OTPCode)}
}

func (f *fakeOTPRepo) Replace(ctx context.Context, code *model.OTPCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	code.CreatedAt = time.Now()
	cp := *code
	f.codes[code.Phone] = &cp
	return nil
}

func (f *fakeOTPRepo) Latest(ctx context.Context, phone string) (*model.OTPCode, error) {
	c, ok := f.codes[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeOTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	for _, c := range f.codes {
		if c.ID == id {
			c.Attempts++
			return c.Attempts, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (f *fakeOTPRepo) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	for phone, c := range f.codes {
		if c.ID == id {
			delete(f.codes, phone)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOTPRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for phone, c := range f.codes {
		if c.ID == id {
			delete(f.codes, phone)
		}
	}
	return nil
}

func (f *fakeOTPRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for phone, c := range f.codes {
		if c.CreatedAt.Before(cutoff) {
			delete(f.codes, phone)
			n++
		}
	}
	return n, nil
}

type nullSender struct{}

func (nullSender) Send(ctx context.Context, to, message string) error { return nil }

type testEnv struct {
	svc     *Service
	users   *fakeUserRepo
	hosps   *fakeHospitalRepo
	otpRepo *fakeOTPRepo
	hasher  security.PasswordHasher
	jwtSvc  pkgauth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	jwtSvc, err := pkgauth.NewJWTService(pkgauth.Config{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
	})
	require.NoError(t, err)

	users := newFakeUserRepo()
	hosps := newFakeHospitalRepo()
	otpRepo := newFakeOTPRepo()
	otpSvc := otp.NewService(otpRepo, nullSender{}, nil, otp.DefaultConfig(), nil, log)
	hasher := security.NewBcryptHasher(4)

	svc := NewService(users, hosps, otpSvc, jwtSvc, hasher, DefaultConfig(), nil, log)

	return &testEnv{
		svc:     svc,
		users:   users,
		hosps:   hosps,
		otpRepo: otpRepo,
		hasher:  hasher,
		jwtSvc:  jwtSvc,
	}
}

// seedStaff registers a hospital domain and a staff user bound to it.
func (e *testEnv) seedStaff(t *testing.T, email, password string, role model.Role) *model.User {
	t.Helper()

	hospitalID := uuid.New()
	domain := email[strings.LastIndex(email, "@")+1:]
	e.hosps.domains[domain] = &model.HospitalDomain{
		Domain:     domain,
		HospitalID: hospitalID,
		Role:       role,
	}

	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)

	name := "Test Staffer"
	user := &model.User{
		Email:        &email,
		FullName:     &name,
		Role:         role,
		PasswordHash: &hash,
		HospitalID:   &hospitalID,
	}
	e.users.add(user)
	return user
}

package provision

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/security"
)

type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*model.Hospital
	domains   map[string]*model.HospitalDomain
	users     *fakeUserRepo
	doctors   []*model.DoctorProfile
}

func newFakeHospitalRepo(users *fakeUserRepo) *fakeHospitalRepo {
	return &fakeHospitalRepo{
		hospitals: make(map[uuid.UUID]*model.Hospital),
		domains:   make(map[string]*model.HospitalDomain),
		users:     users,
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
	hospital.ID = uuid.New()
	f.hospitals[hospital.ID] = hospital
	for i := range domains {
		d := domains[i]
		d.HospitalID = hospital.ID
		f.domains[d.Domain] = &d
	}
	admin.ID = uuid.New()
	admin.HospitalID = &hospital.ID
	return f.users.Create(ctx, admin)
}

func (f *fakeHospitalRepo) CreateDoctor(ctx context.Context, user *model.User, profile *model.DoctorProfile) error {
	user.ID = uuid.New()
	profile.UserID = user.ID
	f.doctors = append(f.doctors, profile)
	return f.users.Create(ctx, user)
}

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Email != nil {
		f.byEmail[*user.Email] = user
	}
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateLoginState(ctx context.Context, user *model.User) error { return nil }

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendTemporaryPassword(ctx context.Context, to, name, password string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeHospitalRepo, *fakeUserRepo, *recordingMailer) {
	t.Helper()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard, TimeFormat: time.RFC3339})
	users := newFakeUserRepo()
	hosps := newFakeHospitalRepo(users)
	mailer := &recordingMailer{}
	svc := NewService(hosps, users, security.NewBcryptHasher(4), mailer, log)
	return svc, hosps, users, mailer
}

func hospitalRequest() *model.CreateHospitalRequest {
	return &model.CreateHospitalRequest{
		Name:        "City Hospital",
		City:        "Pune",
		AdminDomain: "admin.cityhospital.in",
		StaffDomain: "cityhospital.in",
		AdminEmail:  "owner@admin.cityhospital.in",
		AdminName:   "Meera Iyer",
	}
}

func TestCreateHospital(t *testing.T) {
	svc, hosps, users, mailer := newTestService(t)

	account, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)

	assert.Equal(t, model.RoleHospitalAdmin, account.Role)
	assert.Len(t, account.TemporaryPassword, 16)
	assert.Equal(t, []string{"owner@admin.cityhospital.in"}, mailer.sent)

	// Both domain bindings land with the right roles.
	require.Contains(t, hosps.domains, "admin.cityhospital.in")
	require.Contains(t, hosps.domains, "cityhospital.in")
	assert.Equal(t, model.RoleHospitalAdmin, hosps.domains["admin.cityhospital.in"].Role)
	assert.Equal(t, model.RoleDoctor, hosps.domains["cityhospital.in"].Role)

	admin := users.byEmail["owner@admin.cityhospital.in"]
	require.NotNil(t, admin)
	assert.True(t, admin.PasswordIsTemporary)
	assert.True(t, admin.ForcePasswordChange)
	require.NotNil(t, admin.PasswordHash)
	assert.NotEqual(t, account.TemporaryPassword, *admin.PasswordHash)
}

func TestCreateHospital_AdminEmailOutsideDomain(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := hospitalRequest()
	req.AdminEmail = "owner@gmail.com"
	_, err := svc.CreateHospital(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
}

func TestCreateHospital_DuplicateAdminEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)

	req := hospitalRequest()
	req.Name = "City Hospital II"
	_, err = svc.CreateHospital(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.Conflict("", nil))
}

func TestCreateHospital_MailFailureIsNotFatal(t *testing.T) {
	svc, _, _, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")

	account, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, account.TemporaryPassword)
}

func TestCreateDoctor(t *testing.T) {
	svc, _, users, mailer := newTestService(t)

	hospital, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)

	account, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		HospitalID:         hospital.HospitalID,
		Email:              "dr.rao@cityhospital.in",
		FullName:           "Arjun Rao",
		Specialty:          "Cardiology",
		RegistrationNumber: "MH-12345",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleDoctor, account.Role)
	assert.Equal(t, hospital.HospitalID, account.HospitalID)
	assert.Contains(t, mailer.sent, "dr.rao@cityhospital.in")

	doctor := users.byEmail["dr.rao@cityhospital.in"]
	require.NotNil(t, doctor)
	assert.True(t, doctor.ForcePasswordChange)
	require.NotNil(t, doctor.HospitalID)
	assert.Equal(t, hospital.HospitalID, *doctor.HospitalID)
}

func TestCreateDoctor_DomainBelongsToOtherHospital(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	first, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)

	second := hospitalRequest()
	second.Name = "Lakeside Clinic"
	second.AdminDomain = "admin.lakeside.in"
	second.StaffDomain = "lakeside.in"
	second.AdminEmail = "owner@admin.lakeside.in"
	_, err = svc.CreateHospital(context.Background(), second)
	require.NoError(t, err)

	// Staff domain of the second hospital, ID of the first.
	_, err = svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		HospitalID:         first.HospitalID,
		Email:              "dr.rao@lakeside.in",
		FullName:           "Arjun Rao",
		Specialty:          "Cardiology",
		RegistrationNumber: "MH-12345",
	})
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
}

func TestCreateDoctor_UnknownHospital(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		HospitalID:         uuid.New(),
		Email:              "dr.rao@cityhospital.in",
		FullName:           "Arjun Rao",
		Specialty:          "Cardiology",
		RegistrationNumber: "MH-12345",
	})
	assert.ErrorIs(t, err, apperrors.NotFound("", nil))
}

func TestCreateDoctor_AdminDomainRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	hospital, err := svc.CreateHospital(context.Background(), hospitalRequest())
	require.NoError(t, err)

	// Admin domain carries the hospital_admin role, not doctor.
	_, err = svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		HospitalID:         hospital.HospitalID,
		Email:              "dr.rao@admin.cityhospital.in",
		FullName:           "Arjun Rao",
		Specialty:          "Cardiology",
		RegistrationNumber: "MH-12345",
	})
	assert.ErrorIs(t, err, apperrors.Validation("", nil))
}

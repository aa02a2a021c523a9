package provision

import (
	"context"
	"errors"
	"strings"

	"github.com/arogyacare/platform-api/internal/email"
	"github.com/arogyacare/platform-api/internal/model"
	"github.com/arogyacare/platform-api/internal/repository"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/security"
)

const tempPasswordLength = 16

// Service provisions hospitals and staff accounts. Every account starts
// with a generated temporary password and the force-change flag set.
type Service struct {
	hospitals repository.HospitalRepository
	users     repository.UserRepository
	hasher    security.PasswordHasher
	mailer    email.Service
	logger    *logger.Logger
}

func NewService(
	hospitals repository.HospitalRepository,
	users repository.UserRepository,
	hasher security.PasswordHasher,
	mailer email.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		hospitals: hospitals,
		users:     users,
		hasher:    hasher,
		mailer:    mailer,
		logger:    log,
	}
}

// CreateHospital onboards a hospital with its domain bindings and first
// admin account in one transaction.
func (s *Service) CreateHospital(ctx context.Context, req *model.CreateHospitalRequest) (*model.ProvisionedAccount, error) {
	adminEmail := strings.ToLower(strings.TrimSpace(req.AdminEmail))
	adminDomain := strings.ToLower(strings.TrimSpace(req.AdminDomain))
	staffDomain := strings.ToLower(strings.TrimSpace(req.StaffDomain))

	if !strings.HasSuffix(adminEmail, "@"+adminDomain) {
		return nil, apperrors.Validation("admin email must belong to the admin domain", nil)
	}
	if adminDomain == staffDomain {
		return nil, apperrors.Validation("admin and staff domains must differ", nil)
	}

	if _, err := s.users.GetByEmail(ctx, adminEmail); err == nil {
		return nil, apperrors.Conflict("an account with this email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	password, hash, err := s.newTemporaryCredential()
	if err != nil {
		return nil, err
	}

	hospital := &model.Hospital{Name: req.Name, City: req.City}
	domains := []model.HospitalDomain{
		{Domain: adminDomain, Role: model.RoleHospitalAdmin},
		{Domain: staffDomain, Role: model.RoleDoctor},
	}
	admin := &model.User{
		Email:               &adminEmail,
		FullName:            &req.AdminName,
		Role:                model.RoleHospitalAdmin,
		PasswordHash:        &hash,
		PasswordIsTemporary: true,
		ForcePasswordChange: true,
	}

	if err := s.hospitals.CreateWithAdmin(ctx, hospital, domains, admin); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.deliverCredential(ctx, adminEmail, req.AdminName, password)

	s.logger.ZL.Info().
		Str("hospital_id", hospital.ID.String()).
		Str("admin_email", adminEmail).
		Msg("hospital provisioned")

	return &model.ProvisionedAccount{
		UserID:            admin.ID,
		Email:             adminEmail,
		Role:              model.RoleHospitalAdmin,
		HospitalID:        hospital.ID,
		TemporaryPassword: password,
	}, nil
}

// CreateDoctor provisions a doctor account plus clinical profile under
// an existing hospital. The email must fall under a domain bound to
// that hospital with the doctor role.
func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.ProvisionedAccount, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	at := strings.LastIndex(emailAddr, "@")
	if at <= 0 || at == len(emailAddr)-1 {
		return nil, apperrors.Validation("invalid email address", nil)
	}
	domain := emailAddr[at+1:]

	if _, err := s.hospitals.Get(ctx, req.HospitalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hospital", nil)
		}
		return nil, apperrors.Internal(err)
	}

	binding, err := s.hospitals.GetDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("email domain is not bound to any hospital", nil)
		}
		return nil, apperrors.Internal(err)
	}
	if binding.HospitalID != req.HospitalID || binding.Role != model.RoleDoctor {
		return nil, apperrors.Validation("email domain does not grant doctor access to this hospital", nil)
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return nil, apperrors.Conflict("an account with this email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	password, hash, err := s.newTemporaryCredential()
	if err != nil {
		return nil, err
	}

	hospitalID := req.HospitalID
	user := &model.User{
		Email:               &emailAddr,
		FullName:            &req.FullName,
		Role:                model.RoleDoctor,
		HospitalID:          &hospitalID,
		PasswordHash:        &hash,
		PasswordIsTemporary: true,
		ForcePasswordChange: true,
	}
	profile := &model.DoctorProfile{
		HospitalID:         req.HospitalID,
		Specialty:          req.Specialty,
		RegistrationNumber: req.RegistrationNumber,
	}

	if err := s.hospitals.CreateDoctor(ctx, user, profile); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.deliverCredential(ctx, emailAddr, req.FullName, password)

	return &model.ProvisionedAccount{
		UserID:            user.ID,
		Email:             emailAddr,
		Role:              model.RoleDoctor,
		HospitalID:        req.HospitalID,
		TemporaryPassword: password,
	}, nil
}

func (s *Service) newTemporaryCredential() (password, hash string, err error) {
	password, err = security.GenerateTemporaryPassword(tempPasswordLength)
	if err != nil {
		return "", "", apperrors.Internal(err)
	}
	hash, err = s.hasher.Hash(password)
	if err != nil {
		return "", "", apperrors.Internal(err)
	}
	return password, hash, nil
}

// deliverCredential sends the onboarding email. Delivery failure does
// not undo provisioning; the password is still in the API response.
func (s *Service) deliverCredential(ctx context.Context, to, name, password string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendTemporaryPassword(ctx, to, name, password); err != nil {
		s.logger.ZL.Error().Err(err).Str("email", to).Msg("failed to send onboarding email")
	}
}

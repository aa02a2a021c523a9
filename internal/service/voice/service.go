package voice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/arogyacare/platform-api/internal/model"
	apperrors "github.com/arogyacare/platform-api/pkg/errors"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/google/uuid"
)

const assistantCacheKey = "assistant_config"

// AssistantConfig describes the assistant the patient app should talk to.
type AssistantConfig struct {
	AssistantID string
	BaseURL     string
}

// Provider is the external voice-assistant platform. Session tokens are
// minted per conversation and are only valid for SessionTTL.
type Provider interface {
	AssistantConfig(ctx context.Context) (*AssistantConfig, error)
	CreateSessionToken(ctx context.Context, assistantID string, patientID uuid.UUID, ttl time.Duration) (string, error)
}

type Config struct {
	SessionTTL time.Duration
	// ConfigCacheTTL bounds how stale a cached assistant config may be.
	ConfigCacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		SessionTTL:     15 * time.Minute,
		ConfigCacheTTL: 5 * time.Minute,
	}
}

// Service bootstraps voice-assistant sessions for patients. The
// assistant config rarely changes, so it is cached between provider
// round trips.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	cfg      Config
	logger   *logger.Logger
}

func NewService(provider Provider, cfg Config, log *logger.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 15 * time.Minute
	}
	if cfg.ConfigCacheTTL <= 0 {
		cfg.ConfigCacheTTL = 5 * time.Minute
	}
	return &Service{
		provider: provider,
		cache:    gocache.New(cfg.ConfigCacheTTL, 2*cfg.ConfigCacheTTL),
		cfg:      cfg,
		logger:   log,
	}
}

// CreateSession mints a session for the calling patient. Only patients
// talk to the assistant; staff roles are refused.
func (s *Service) CreateSession(ctx context.Context, patientID uuid.UUID, role model.Role) (*model.VoiceSession, error) {
	if role != model.RolePatient {
		return nil, apperrors.InvalidRole()
	}

	cfg, err := s.assistantConfig(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	token, err := s.provider.CreateSessionToken(ctx, cfg.AssistantID, patientID, s.cfg.SessionTTL)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create assistant session: %w", err))
	}

	return &model.VoiceSession{
		AssistantID:  cfg.AssistantID,
		SessionToken: token,
		BaseURL:      cfg.BaseURL,
		ExpiresIn:    int(s.cfg.SessionTTL.Seconds()),
	}, nil
}

func (s *Service) assistantConfig(ctx context.Context) (*AssistantConfig, error) {
	if cached, ok := s.cache.Get(assistantCacheKey); ok {
		return cached.(*AssistantConfig), nil
	}

	cfg, err := s.provider.AssistantConfig(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(assistantCacheKey, cfg, gocache.DefaultExpiration)
	return cfg, nil
}

// StaticProvider serves a fixed assistant from configuration and mints
// opaque random session tokens. Stands in until the hosted assistant
// platform exposes a token API.
type StaticProvider struct {
	Assistant AssistantConfig
}

func (p *StaticProvider) AssistantConfig(ctx context.Context) (*AssistantConfig, error) {
	cfg := p.Assistant
	return &cfg, nil
}

func (p *StaticProvider) CreateSessionToken(ctx context.Context, assistantID string, patientID uuid.UUID, ttl time.Duration) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

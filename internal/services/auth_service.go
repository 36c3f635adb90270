package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/cirvee/earnings-backend/internal/config"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// adminID is a fixed subject for admin tokens; the admin account is a single
// configured credential, not a users row.
var adminID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *utils.JWTManager
	admin      *config.AdminConfig
}

func NewAuthService(userRepo *repository.UserRepository, jwtManager *utils.JWTManager, admin *config.AdminConfig) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		admin:      admin,
	}
}

// AdminLogin checks the configured credential pair and issues an admin token.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (string, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	if !usernameOK || !utils.CheckPassword(password, s.admin.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.jwtManager.Generate(adminID, s.admin.Username, string(models.RoleAdmin))
}

// ValidateToken verifies a user token issued by the external registration
// system and resolves the embedded user against the referral store.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

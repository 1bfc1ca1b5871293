package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oakmere-data/enricher/internal/auth"
	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/repository"
)

// ErrInvalidCredentials is returned for unknown emails, wrong passwords and
// deactivated accounts alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	operators repository.OperatorsRepository
	jwt       *auth.JWTManager
	log       *zap.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(operators repository.OperatorsRepository, jwtManager *auth.JWTManager, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{operators: operators, jwt: jwtManager, log: log}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password must not be empty")
	}

	operator, err := s.operators.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !operator.Active {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(operator.ID.String(), operator.Email, operator.Name, operator.Role)
	if err != nil {
		return "", err
	}

	return token, nil
}

// EnsureBootstrapAdmin creates the initial admin account when the operators
// table is empty. A blank email or password disables bootstrapping.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.operators.Count(ctx)
	if err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}

	operator, err := s.operators.Create(ctx, email, "Administrator", string(hashed), entity.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// another instance inserted it first
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	s.log.Info("bootstrap admin created", zap.String("email", operator.Email))
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/repository"
)

// OperatorService encapsulates administrative operations for operator accounts.
type OperatorService struct {
	repo repository.OperatorsRepository
}

// NewOperatorService builds a new OperatorService instance.
func NewOperatorService(repo repository.OperatorsRepository) *OperatorService {
	return &OperatorService{repo: repo}
}

// ListOperators returns all operators as DTOs.
func (s *OperatorService) ListOperators(ctx context.Context) ([]dto.OperatorResponse, error) {
	operators, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OperatorResponse, 0, len(operators))
	for _, op := range operators {
		responses = append(responses, operatorResponse(&op))
	}
	return responses, nil
}

// CreateOperator creates a new operator with the supplied role.
func (s *OperatorService) CreateOperator(ctx context.Context, req dto.CreateOperatorRequest) (*dto.OperatorResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)

	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}
	if req.Role == "" {
		req.Role = entity.RoleViewer
	}
	if req.Role != entity.RoleAdmin && req.Role != entity.RoleViewer {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	operator, err := s.repo.Create(ctx, req.Email, req.Name, string(hashed), req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, repository.ErrEmailTaken
		}
		return nil, err
	}

	resp := operatorResponse(operator)
	return &resp, nil
}

// UpdateOperator mutates selected operator fields.
func (s *OperatorService) UpdateOperator(ctx context.Context, id string, req dto.UpdateOperatorRequest) (*dto.OperatorResponse, error) {
	operatorID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid operator id")
	}

	var emailPtr *string
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		emailPtr = &trimmed
		if *emailPtr == "" {
			return nil, errors.New("email cannot be empty")
		}
	}

	var namePtr *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		namePtr = &trimmed
	}

	var rolePtr *string
	if req.Role != nil {
		trimmed := strings.TrimSpace(*req.Role)
		rolePtr = &trimmed
		if *rolePtr != entity.RoleAdmin && *rolePtr != entity.RoleViewer {
			return nil, fmt.Errorf("unknown role %q", *rolePtr)
		}
	}

	var passwordPtr *string
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, errors.New("password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordPtr = &pwd
	}

	operator, err := s.repo.Update(ctx, operatorID, emailPtr, namePtr, passwordPtr, rolePtr, req.Active)
	if err != nil {
		if errors.Is(err, repository.ErrOperatorNotFound) {
			return nil, repository.ErrOperatorNotFound
		}
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, repository.ErrEmailTaken
		}
		return nil, err
	}

	resp := operatorResponse(operator)
	return &resp, nil
}

// DeleteOperator removes an operator by id.
func (s *OperatorService) DeleteOperator(ctx context.Context, id string) error {
	operatorID, err := uuid.Parse(id)
	if err != nil {
		return errors.New("invalid operator id")
	}
	return s.repo.Delete(ctx, operatorID)
}

func operatorResponse(op *entity.Operator) dto.OperatorResponse {
	return dto.OperatorResponse{
		ID:     op.ID.String(),
		Email:  op.Email,
		Name:   op.Name,
		Role:   op.Role,
		Active: op.Active,
	}
}

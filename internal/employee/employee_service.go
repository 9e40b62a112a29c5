package employee

import (
	"context"
	"strings"

	employeeerrors "cerven-ot/internal/employee/errors"
	"cerven-ot/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	GetProfile(ctx context.Context, companyID, employeeID string) (Profile, error)
	LoadPrincipal(ctx context.Context, companyID, employeeID, userID string) (contextutil.Principal, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, employeeerrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to list employees", zap.String("company_id", companyID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	out := make([]EmployeeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(row), nil
}

func (s *service) GetProfile(ctx context.Context, companyID, employeeID string) (Profile, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return Profile{}, employeeerrors.ErrInvalidEmployeeID
	}

	p, err := s.repo.FindProfile(ctx, companyID, employeeID)
	if err != nil {
		return Profile{}, mapRepositoryError(err)
	}
	return *p, nil
}

// LoadPrincipal builds the acting identity for a request from the token
// claims and the directory. Role and position always come from the database.
func (s *service) LoadPrincipal(ctx context.Context, companyID, employeeID, userID string) (contextutil.Principal, error) {
	p, err := s.GetProfile(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Warn("failed to load principal",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return contextutil.Principal{}, err
	}
	if !p.Active() {
		s.logger.Warn("inactive employee rejected",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.String("employment_status", p.EmploymentStatus),
		)
		return contextutil.Principal{}, employeeerrors.ErrEmployeeInactive
	}

	return contextutil.Principal{
		UserID:     userID,
		EmployeeID: p.EmployeeID,
		CompanyID:  p.CompanyID,
		FullName:   p.FullName,
		Email:      p.Email,
		Role:       p.Role,
		Position:   p.Position,
	}, nil
}

func mapToResponse(e *Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID.String(),
		CompanyID:        e.CompanyID.String(),
		EmployeeNumber:   e.EmployeeNumber,
		FullName:         e.FullName,
		Email:            e.Email,
		Phone:            e.Phone,
		EmploymentStatus: strings.ToLower(e.EmploymentStatus),
	}
	if e.PositionID != nil {
		resp.PositionID = e.PositionID.String()
	}
	if e.Position != nil {
		resp.Position = e.Position.Name
	}
	return resp
}

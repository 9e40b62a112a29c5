package cashadvance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	cashadvanceerrors "cerven-ot/internal/cashadvance/errors"
	"cerven-ot/internal/events"
	"cerven-ot/internal/messaging/kafka"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=cash_advance_service.go -destination=mock/cash_advance_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateCashAdvanceRequest) (CashAdvanceResponse, error)
	GetAll(ctx context.Context, p contextutil.Principal, status string) ([]CashAdvanceResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (CashAdvanceResponse, error)
	Approve(ctx context.Context, p contextutil.Principal, id string) (CashAdvanceResponse, error)
	Reject(ctx context.Context, p contextutil.Principal, id, reason string) (CashAdvanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	policy policy.Authorizer
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, authorizer policy.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("cashadvance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cashadvance.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		policy: authorizer,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateCashAdvanceRequest) (CashAdvanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	typ := strings.ToLower(strings.TrimSpace(req.Type))
	if !validType(typ) {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrInvalidType
	}
	if req.Amount <= 0 {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrInvalidAmount
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return CashAdvanceResponse{}, policy.ErrNoPrincipal
	}
	employeeID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return CashAdvanceResponse{}, policy.ErrNoPrincipal
	}

	a := &CashAdvance{
		ID:                uuid.New(),
		CompanyID:         companyID,
		EmployeeID:        employeeID,
		Type:              typ,
		Amount:            req.Amount,
		Purpose:           strings.TrimSpace(req.Purpose),
		RequesterPosition: p.Position,
		Status:            StatusPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CashAdvanceResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, a); err != nil {
		log.Error("create cash advance failed", zap.Error(err))
		return CashAdvanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return CashAdvanceResponse{}, err
	}

	log.Info("cash advance requested",
		zap.String("cash_advance_id", a.ID.String()),
		zap.String("type", a.Type),
		zap.Int64("amount", a.Amount),
		zap.String("requester_position", a.RequesterPosition),
	)
	return mapToResponse(a), nil
}

func (s *service) GetAll(ctx context.Context, p contextutil.Principal, status string) ([]CashAdvanceResponse, error) {
	filter := Filter{Status: strings.ToLower(strings.TrimSpace(status))}
	if !s.policy.Allows(ctx, p, policy.CashAdvanceReadAll) {
		filter.EmployeeID = p.EmployeeID
	}

	rows, err := s.repo.FindAll(ctx, p.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CashAdvanceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (CashAdvanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrCashAdvanceNotFound
	}
	a, err := s.repo.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return CashAdvanceResponse{}, mapRepositoryError(err)
	}
	if a.EmployeeID.String() != p.EmployeeID && !s.policy.Allows(ctx, p, policy.CashAdvanceReadAll) {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrCashAdvanceNotFound
	}
	return mapToResponse(a), nil
}

func (s *service) Approve(ctx context.Context, p contextutil.Principal, id string) (CashAdvanceResponse, error) {
	return s.decide(ctx, p, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, p contextutil.Principal, id, reason string) (CashAdvanceResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, p, id, StatusRejected, reason)
}

func (s *service) decide(ctx context.Context, p contextutil.Principal, id, target, reason string) (CashAdvanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrCashAdvanceNotFound
	}
	deciderID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return CashAdvanceResponse{}, policy.ErrNoPrincipal
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CashAdvanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	a, err := qtx.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return CashAdvanceResponse{}, mapRepositoryError(err)
	}

	if err := s.policy.Authorize(ctx, p, policy.CashAdvanceDecide, policy.Resource{
		OwnerID:           a.EmployeeID.String(),
		RequesterPosition: a.RequesterPosition,
	}); err != nil {
		return CashAdvanceResponse{}, err
	}
	if a.Status != StatusPending {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrAlreadyDecided
	}

	now := s.now().UTC()
	a.Status = target
	a.DecidedBy = &deciderID
	a.DecidedAt = &now
	a.RejectionReason = nil
	if target == StatusRejected {
		a.RejectionReason = &reason
	}

	updated, err := qtx.UpdateDecision(ctx, a)
	if err != nil {
		return CashAdvanceResponse{}, err
	}
	if !updated {
		return CashAdvanceResponse{}, cashadvanceerrors.ErrAlreadyDecided
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, events.KindCashAdvance, a.ID.String(), events.ApprovalDecidedEventType, events.ApprovalDecidedTopic,
			events.ApprovalDecidedEvent{
				EventType:   events.ApprovalDecidedEventType,
				Kind:        events.KindCashAdvance,
				EntityID:    a.ID.String(),
				CompanyID:   a.CompanyID.String(),
				RequesterID: a.EmployeeID.String(),
				DecidedBy:   p.EmployeeID,
				Decision:    target,
				FinalStatus: target,
				Comment:     reason,
				OccurredAt:  now,
			})
		if err != nil {
			return CashAdvanceResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return CashAdvanceResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return CashAdvanceResponse{}, err
	}

	log.Info("cash advance decided",
		zap.String("cash_advance_id", a.ID.String()),
		zap.String("status", target),
		zap.String("decided_by", p.EmployeeID),
	)
	return mapToResponse(a), nil
}

func mapToResponse(a *CashAdvance) CashAdvanceResponse {
	resp := CashAdvanceResponse{
		ID:                a.ID.String(),
		CompanyID:         a.CompanyID.String(),
		EmployeeID:        a.EmployeeID.String(),
		Type:              a.Type,
		Amount:            a.Amount,
		Purpose:           a.Purpose,
		RequesterPosition: a.RequesterPosition,
		Status:            a.Status,
		RejectionReason:   a.RejectionReason,
	}
	if a.DecidedBy != nil {
		v := a.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if a.DecidedAt != nil {
		v := a.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName
	}
	return resp
}

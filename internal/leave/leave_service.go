package leave

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"cerven-ot/internal/events"
	leaveerrors "cerven-ot/internal/leave/errors"
	"cerven-ot/internal/messaging/kafka"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELLED"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, p contextutil.Principal, status string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
	Reject(ctx context.Context, p contextutil.Principal, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error)
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
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
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

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyID, employeeID, err := principalIDs(p)
	if err != nil {
		return LeaveResponse{}, err
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, p.CompanyID, p.EmployeeID)
	if err != nil {
		log.Error("create leave employee company check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !belongs {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, p.CompanyID, p.EmployeeID, startDate, endDate, nil)
	if err != nil {
		log.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		log.Warn("create leave overlap detected",
			zap.String("employee_id", p.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &Leave{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays(startDate, endDate),
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
		CreatedBy:  employeeID,
	}

	if err := qtx.Create(ctx, l); err != nil {
		log.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", p.EmployeeID),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, p contextutil.Principal, status string) ([]LeaveResponse, error) {
	filter := Filter{Status: strings.ToUpper(strings.TrimSpace(status))}
	if !s.policy.Allows(ctx, p, policy.LeaveReadAll) {
		filter.EmployeeID = p.EmployeeID
	}

	leaves, err := s.repo.FindAll(ctx, p.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l, err := s.repo.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.EmployeeID.String() != p.EmployeeID && !s.policy.Allows(ctx, p, policy.LeaveReadAll) {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	return mapToResponse(*l), nil
}

// Update lets the requester change the details of a pending leave.
func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, _, err := principalIDs(p); err != nil {
		return LeaveResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.EmployeeID.String() != p.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrNotLeaveOwner
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, p.CompanyID, p.EmployeeID, startDate, endDate, &id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l.LeaveType = req.LeaveType
	l.StartDate = startDate
	l.EndDate = endDate
	l.TotalDays = totalDays(startDate, endDate)
	l.Reason = strings.TrimSpace(req.Reason)

	if err := qtx.Update(ctx, l); err != nil {
		log.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("update leave success", zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	return s.decide(ctx, p, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, p contextutil.Principal, id, rejectionReason string) (LeaveResponse, error) {
	if strings.TrimSpace(rejectionReason) == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, p, id, StatusRejected, strings.TrimSpace(rejectionReason))
}

func (s *service) Cancel(ctx context.Context, p contextutil.Principal, id string) (LeaveResponse, error) {
	return s.decide(ctx, p, id, StatusCanceled, "")
}

// decide moves a pending leave to a terminal status. Approve and reject need
// the decide permission and may not target the principal's own leave; cancel
// is reserved for the requester.
func (s *service) decide(ctx context.Context, p contextutil.Principal, id, target, reason string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	_, actorID, err := principalIDs(p)
	if err != nil {
		return LeaveResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if target == StatusCanceled {
		if l.EmployeeID != actorID {
			return LeaveResponse{}, leaveerrors.ErrNotLeaveOwner
		}
	} else if err := s.policy.Authorize(ctx, p, policy.LeaveDecide, policy.Resource{OwnerID: l.EmployeeID.String()}); err != nil {
		return LeaveResponse{}, err
	}

	if l.Status != StatusPending {
		log.Warn("decide leave on terminal status",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", target),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided
	}

	now := s.now().UTC()
	l.Status = target
	l.DecidedBy = &actorID
	l.DecidedAt = &now
	l.RejectionReason = nil
	if target == StatusRejected {
		l.RejectionReason = &reason
	}

	updated, err := qtx.UpdateStatus(ctx, l, StatusPending)
	if err != nil {
		log.Error("decide leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !updated {
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyDecided
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, events.KindLeave, l.ID.String(), events.ApprovalDecidedEventType, events.ApprovalDecidedTopic,
			events.ApprovalDecidedEvent{
				EventType:   events.ApprovalDecidedEventType,
				Kind:        events.KindLeave,
				EntityID:    l.ID.String(),
				CompanyID:   l.CompanyID.String(),
				RequesterID: l.EmployeeID.String(),
				DecidedBy:   p.EmployeeID,
				Level:       1,
				Decision:    strings.ToLower(target),
				FinalStatus: target,
				Comment:     reason,
				OccurredAt:  now,
			})
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("decide leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave decided",
		zap.String("leave_id", id),
		zap.String("status", target),
		zap.String("actor_id", p.EmployeeID),
	)
	return mapToResponse(*l), nil
}

func principalIDs(p contextutil.Principal) (uuid.UUID, uuid.UUID, error) {
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, leaveerrors.ErrInvalidCompanyID
	}
	employeeID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return uuid.Nil, uuid.Nil, leaveerrors.ErrInvalidActorID
	}
	return companyID, employeeID, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func totalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format("2006-01-02"),
		EndDate:         l.EndDate.Format("2006-01-02"),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status,
		CreatedBy:       l.CreatedBy.String(),
		RejectionReason: l.RejectionReason,
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}

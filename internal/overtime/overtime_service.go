package overtime

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"cerven-ot/internal/attendance"
	"cerven-ot/internal/events"
	"cerven-ot/internal/messaging/kafka"
	overtimeerrors "cerven-ot/internal/overtime/errors"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=overtime_service.go -destination=mock/overtime_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateOvertimeRequest) (OvertimeResponse, error)
	GetAll(ctx context.Context, p contextutil.Principal, status string) ([]OvertimeResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (OvertimeResponse, error)
	Review(ctx context.Context, p contextutil.Principal, req ReviewOvertimeRequest) (OvertimeResponse, error)
}

// AttendanceLookup is satisfied by attendance.Repository.
type AttendanceLookup interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*attendance.Attendance, error)
}

// AttendanceSyncer mirrors a final overtime decision onto the attendance row.
type AttendanceSyncer interface {
	SetOvertimeApproved(ctx context.Context, companyID, attendanceID string, approved bool) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	attendances AttendanceLookup
	syncer      AttendanceSyncer
	outbox      kafka.OutboxRepository
	policy      policy.Authorizer
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendances AttendanceLookup,
	syncer AttendanceSyncer,
	outboxRepo kafka.OutboxRepository,
	authorizer policy.Authorizer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("overtime.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overtime.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		attendances: attendances,
		syncer:      syncer,
		outbox:      outboxRepo,
		policy:      authorizer,
		now:         time.Now,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateOvertimeRequest) (OvertimeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	attendanceID, err := uuid.Parse(strings.TrimSpace(req.AttendanceID))
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidAttendanceID
	}
	if req.RequestedHours <= 0 {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidHours
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return OvertimeResponse{}, policy.ErrNoPrincipal
	}
	employeeID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return OvertimeResponse{}, policy.ErrNoPrincipal
	}

	att, err := s.attendances.FindByIDAndCompany(ctx, p.CompanyID, attendanceID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrAttendanceNotFound
		}
		return OvertimeResponse{}, err
	}
	if att.EmployeeID != employeeID {
		return OvertimeResponse{}, overtimeerrors.ErrNotOwnAttendance
	}
	if att.ClockOut == nil {
		return OvertimeResponse{}, overtimeerrors.ErrNotClockedOut
	}
	if req.RequestedHours > att.WorkedHours() {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidHours
	}

	row := &OvertimeRequest{
		ID:             uuid.New(),
		CompanyID:      companyID,
		EmployeeID:     employeeID,
		AttendanceID:   attendanceID,
		RequestedHours: req.RequestedHours,
		Reason:         strings.TrimSpace(req.Reason),
		Level1Status:   StatusPending,
		Level2Status:   StatusPending,
		Status:         StatusPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		return OvertimeResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return OvertimeResponse{}, err
	}

	log.Info("overtime requested",
		zap.String("overtime_id", row.ID.String()),
		zap.String("attendance_id", row.AttendanceID.String()),
		zap.Float64("requested_hours", row.RequestedHours),
	)
	return mapToResponse(row), nil
}

func (s *service) canReadAll(ctx context.Context, p contextutil.Principal) bool {
	return s.policy.Allows(ctx, p, policy.OvertimeReadAll) ||
		s.policy.Allows(ctx, p, policy.OvertimeReviewLevel1) ||
		s.policy.Allows(ctx, p, policy.OvertimeReviewLevel2)
}

func (s *service) GetAll(ctx context.Context, p contextutil.Principal, status string) ([]OvertimeResponse, error) {
	filter := Filter{Status: strings.ToLower(strings.TrimSpace(status))}
	if !s.canReadAll(ctx, p) {
		filter.EmployeeID = p.EmployeeID
	}

	rows, err := s.repo.FindAll(ctx, p.CompanyID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]OvertimeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (OvertimeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}

	row, err := s.repo.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return OvertimeResponse{}, mapRepositoryError(err)
	}
	if row.EmployeeID.String() != p.EmployeeID && !s.canReadAll(ctx, p) {
		return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotFound
	}
	return mapToResponse(row), nil
}

func levelAction(level int) policy.Action {
	if level == Level2 {
		return policy.OvertimeReviewLevel2
	}
	return policy.OvertimeReviewLevel1
}

// Review applies one level decision. Authorization and the phase check run
// before any write; the update itself is a compare-and-swap on the phase.
func (s *service) Review(ctx context.Context, p contextutil.Principal, req ReviewOvertimeRequest) (OvertimeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(req.OvertimeID); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}
	if req.Level != Level1 && req.Level != Level2 {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidLevel
	}
	decision, ok := DecisionFor(strings.ToLower(strings.TrimSpace(req.Action)))
	if !ok {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidAction
	}
	reviewerID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return OvertimeResponse{}, policy.ErrNoPrincipal
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OvertimeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	row, err := qtx.FindByIDAndCompany(ctx, p.CompanyID, req.OvertimeID)
	if err != nil {
		return OvertimeResponse{}, mapRepositoryError(err)
	}

	if err := s.policy.Authorize(ctx, p, levelAction(req.Level), policy.Resource{OwnerID: row.EmployeeID.String()}); err != nil {
		return OvertimeResponse{}, err
	}

	from := Phase{Level1: row.Level1Status, Level2: row.Level2Status}
	out, err := Transition(from, req.Level, decision)
	if err != nil {
		return OvertimeResponse{}, err
	}

	now := s.now().UTC()
	var comment *string
	if c := strings.TrimSpace(req.Comment); c != "" {
		comment = &c
	}

	row.Level1Status = out.Phase.Level1
	row.Level2Status = out.Phase.Level2
	if req.Level == Level1 {
		row.Level1Reviewer = &reviewerID
		row.Level1ReviewedAt = &now
		row.Level1Comment = comment
	} else {
		row.Level2Reviewer = &reviewerID
		row.Level2ReviewedAt = &now
		row.Level2Comment = comment
	}
	row.Reviewer = &reviewerID
	row.Status = StatusPending
	if out.Final != "" {
		final := out.Final
		row.FinalStatus = &final
		row.Status = final
		row.ApprovedAt = &now
	}

	updated, err := qtx.UpdateDecision(ctx, row, from)
	if err != nil {
		return OvertimeResponse{}, err
	}
	if !updated {
		return OvertimeResponse{}, overtimeerrors.ErrAlreadyDecided
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, events.KindOvertime, row.ID.String(), events.ApprovalDecidedEventType, events.ApprovalDecidedTopic,
			events.ApprovalDecidedEvent{
				EventType:   events.ApprovalDecidedEventType,
				Kind:        events.KindOvertime,
				EntityID:    row.ID.String(),
				CompanyID:   row.CompanyID.String(),
				RequesterID: row.EmployeeID.String(),
				DecidedBy:   p.EmployeeID,
				Level:       req.Level,
				Decision:    decision,
				FinalStatus: out.Final,
				Comment:     strings.TrimSpace(req.Comment),
				OccurredAt:  now,
			})
		if err != nil {
			return OvertimeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return OvertimeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return OvertimeResponse{}, err
	}

	log.Info("overtime reviewed",
		zap.String("overtime_id", row.ID.String()),
		zap.Int("level", req.Level),
		zap.String("decision", decision),
		zap.String("final_status", out.Final),
		zap.String("reviewer", p.EmployeeID),
	)

	if out.Final != "" && s.syncer != nil {
		approved := out.Final == StatusApproved
		if err := s.syncer.SetOvertimeApproved(ctx, row.CompanyID.String(), row.AttendanceID.String(), approved); err != nil {
			log.Error("failed to sync attendance overtime flag",
				zap.String("overtime_id", row.ID.String()),
				zap.String("attendance_id", row.AttendanceID.String()),
				zap.Bool("approved", approved),
				zap.Error(err),
			)
		}
	}

	return mapToResponse(row), nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func formatUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func mapToResponse(o *OvertimeRequest) OvertimeResponse {
	resp := OvertimeResponse{
		ID:             o.ID.String(),
		CompanyID:      o.CompanyID.String(),
		EmployeeID:     o.EmployeeID.String(),
		AttendanceID:   o.AttendanceID.String(),
		RequestedHours: o.RequestedHours,
		Reason:         o.Reason,
		Level1: LevelResponse{
			Status:     o.Level1Status,
			Reviewer:   formatUUID(o.Level1Reviewer),
			ReviewedAt: formatTime(o.Level1ReviewedAt),
			Comment:    o.Level1Comment,
		},
		Level2: LevelResponse{
			Status:     o.Level2Status,
			Reviewer:   formatUUID(o.Level2Reviewer),
			ReviewedAt: formatTime(o.Level2ReviewedAt),
			Comment:    o.Level2Comment,
		},
		FinalStatus: o.FinalStatus,
		Status:      o.Status,
		ApprovedAt:  formatTime(o.ApprovedAt),
		Reviewer:    formatUUID(o.Reviewer),
	}
	if !o.CreatedAt.IsZero() {
		resp.CreatedAt = o.CreatedAt.UTC().Format(time.RFC3339)
	}
	if o.Employee != nil {
		resp.EmployeeName = o.Employee.FullName
	}
	return resp
}

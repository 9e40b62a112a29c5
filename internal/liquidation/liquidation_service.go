package liquidation

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"cerven-ot/internal/cashadvance"
	"cerven-ot/internal/events"
	liquidationerrors "cerven-ot/internal/liquidation/errors"
	"cerven-ot/internal/messaging/kafka"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=liquidation_service.go -destination=mock/liquidation_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateLiquidationRequest) (LiquidationResponse, error)
	GetAll(ctx context.Context, p contextutil.Principal, status string) ([]LiquidationResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (LiquidationResponse, error)
	Approve(ctx context.Context, p contextutil.Principal, id string) (LiquidationResponse, error)
	Reject(ctx context.Context, p contextutil.Principal, id, reason string) (LiquidationResponse, error)
	Voucher(ctx context.Context, p contextutil.Principal, id string) ([]byte, string, error)
}

// AdvanceLookup is satisfied by cashadvance.Repository.
type AdvanceLookup interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*cashadvance.CashAdvance, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	advances AdvanceLookup
	outbox   kafka.OutboxRepository
	policy   policy.Authorizer
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	advances AdvanceLookup,
	outboxRepo kafka.OutboxRepository,
	authorizer policy.Authorizer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("liquidation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("liquidation.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		advances: advances,
		outbox:   outboxRepo,
		policy:   authorizer,
		now:      time.Now,
		logger:   l,
	}
}

func buildItems(reqs []ItemRequest) ([]LiquidationItem, int64, error) {
	if len(reqs) == 0 {
		return nil, 0, liquidationerrors.ErrItemsRequired
	}
	items := make([]LiquidationItem, 0, len(reqs))
	var total int64
	for _, r := range reqs {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(r.ExpenseDate))
		if err != nil {
			return nil, 0, liquidationerrors.ErrInvalidExpenseDate
		}
		if r.Transport < 0 || r.Meals < 0 || r.Lodging < 0 || r.Others < 0 {
			return nil, 0, liquidationerrors.ErrNegativeAmount
		}
		item := LiquidationItem{
			ID:          uuid.New(),
			ExpenseDate: date,
			Origin:      strings.TrimSpace(r.Origin),
			Destination: strings.TrimSpace(r.Destination),
			Transport:   r.Transport,
			Meals:       r.Meals,
			Lodging:     r.Lodging,
			Others:      r.Others,
			Remarks:     strings.TrimSpace(r.Remarks),
		}
		item.Total = item.lineTotal()
		total += item.Total
		items = append(items, item)
	}
	return items, total, nil
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateLiquidationRequest) (LiquidationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	advanceID, err := uuid.Parse(strings.TrimSpace(req.CashAdvanceID))
	if err != nil {
		return LiquidationResponse{}, liquidationerrors.ErrInvalidCashAdvanceID
	}
	items, total, err := buildItems(req.Items)
	if err != nil {
		return LiquidationResponse{}, err
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return LiquidationResponse{}, policy.ErrNoPrincipal
	}
	employeeID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return LiquidationResponse{}, policy.ErrNoPrincipal
	}

	advance, err := s.advances.FindByIDAndCompany(ctx, p.CompanyID, advanceID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LiquidationResponse{}, liquidationerrors.ErrCashAdvanceNotFound
		}
		return LiquidationResponse{}, err
	}
	if advance.EmployeeID != employeeID {
		return LiquidationResponse{}, liquidationerrors.ErrNotOwnCashAdvance
	}
	if advance.Status != cashadvance.StatusApproved {
		return LiquidationResponse{}, liquidationerrors.ErrCashAdvanceNotApproved
	}

	returnToCompany, reimbursement := Settle(advance.Amount, total)
	l := &Liquidation{
		ID:                uuid.New(),
		CompanyID:         companyID,
		CashAdvanceID:     advanceID,
		EmployeeID:        employeeID,
		RequesterPosition: p.Position,
		AdvanceAmount:     advance.Amount,
		TotalExpenses:     total,
		ReturnToCompany:   returnToCompany,
		Reimbursement:     reimbursement,
		Status:            StatusPending,
		Items:             items,
	}
	for i := range l.Items {
		l.Items[i].LiquidationID = l.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LiquidationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.LockAdvance(ctx, p.CompanyID, advanceID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LiquidationResponse{}, liquidationerrors.ErrCashAdvanceNotFound
		}
		return LiquidationResponse{}, err
	}
	active, err := qtx.HasActiveForAdvance(ctx, p.CompanyID, advanceID.String())
	if err != nil {
		return LiquidationResponse{}, err
	}
	if active {
		return LiquidationResponse{}, liquidationerrors.ErrActiveLiquidationExists
	}
	if err := qtx.Create(ctx, l); err != nil {
		return LiquidationResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return LiquidationResponse{}, err
	}

	log.Info("liquidation filed",
		zap.String("liquidation_id", l.ID.String()),
		zap.String("cash_advance_id", advanceID.String()),
		zap.Int64("total_expenses", total),
		zap.Int64("return_to_company", returnToCompany),
		zap.Int64("reimbursement", reimbursement),
	)
	return mapToResponse(l), nil
}

func (s *service) GetAll(ctx context.Context, p contextutil.Principal, status string) ([]LiquidationResponse, error) {
	filter := Filter{Status: strings.ToLower(strings.TrimSpace(status))}
	if !s.policy.Allows(ctx, p, policy.LiquidationReadAll) {
		filter.EmployeeID = p.EmployeeID
	}

	rows, err := s.repo.FindAll(ctx, p.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]LiquidationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) find(ctx context.Context, p contextutil.Principal, id string) (*Liquidation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, liquidationerrors.ErrLiquidationNotFound
	}
	l, err := s.repo.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if l.EmployeeID.String() != p.EmployeeID && !s.policy.Allows(ctx, p, policy.LiquidationReadAll) {
		return nil, liquidationerrors.ErrLiquidationNotFound
	}
	return l, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (LiquidationResponse, error) {
	l, err := s.find(ctx, p, id)
	if err != nil {
		return LiquidationResponse{}, err
	}
	return mapToResponse(l), nil
}

func (s *service) Voucher(ctx context.Context, p contextutil.Principal, id string) ([]byte, string, error) {
	l, err := s.find(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := buildVoucherPDF(voucherLines(l))
	if err != nil {
		return nil, "", err
	}
	return pdf, "liquidation-" + l.ID.String() + ".pdf", nil
}

func (s *service) Approve(ctx context.Context, p contextutil.Principal, id string) (LiquidationResponse, error) {
	return s.decide(ctx, p, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, p contextutil.Principal, id, reason string) (LiquidationResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return LiquidationResponse{}, liquidationerrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, p, id, StatusRejected, reason)
}

func (s *service) decide(ctx context.Context, p contextutil.Principal, id, target, reason string) (LiquidationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return LiquidationResponse{}, liquidationerrors.ErrLiquidationNotFound
	}
	deciderID, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return LiquidationResponse{}, policy.ErrNoPrincipal
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LiquidationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return LiquidationResponse{}, mapRepositoryError(err)
	}

	if err := s.policy.Authorize(ctx, p, policy.LiquidationDecide, policy.Resource{
		OwnerID:           l.EmployeeID.String(),
		RequesterPosition: l.RequesterPosition,
	}); err != nil {
		return LiquidationResponse{}, err
	}
	if l.Status != StatusPending {
		return LiquidationResponse{}, liquidationerrors.ErrAlreadyDecided
	}

	now := s.now().UTC()
	l.Status = target
	l.DecidedBy = &deciderID
	l.DecidedAt = &now
	l.RejectionReason = nil
	if target == StatusRejected {
		l.RejectionReason = &reason
	}

	updated, err := qtx.UpdateDecision(ctx, l)
	if err != nil {
		return LiquidationResponse{}, err
	}
	if !updated {
		return LiquidationResponse{}, liquidationerrors.ErrAlreadyDecided
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(ctx, events.KindLiquidation, l.ID.String(), events.ApprovalDecidedEventType, events.ApprovalDecidedTopic,
			events.ApprovalDecidedEvent{
				EventType:   events.ApprovalDecidedEventType,
				Kind:        events.KindLiquidation,
				EntityID:    l.ID.String(),
				CompanyID:   l.CompanyID.String(),
				RequesterID: l.EmployeeID.String(),
				DecidedBy:   p.EmployeeID,
				Decision:    target,
				FinalStatus: target,
				Comment:     reason,
				OccurredAt:  now,
			})
		if err != nil {
			return LiquidationResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			return LiquidationResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return LiquidationResponse{}, err
	}

	log.Info("liquidation decided",
		zap.String("liquidation_id", l.ID.String()),
		zap.String("status", target),
		zap.String("decided_by", p.EmployeeID),
	)
	return mapToResponse(l), nil
}

func mapToResponse(l *Liquidation) LiquidationResponse {
	resp := LiquidationResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		CashAdvanceID:   l.CashAdvanceID.String(),
		EmployeeID:      l.EmployeeID.String(),
		AdvanceAmount:   l.AdvanceAmount,
		TotalExpenses:   l.TotalExpenses,
		ReturnToCompany: l.ReturnToCompany,
		Reimbursement:   l.Reimbursement,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		Items:           make([]ItemResponse, 0, len(l.Items)),
	}
	for _, item := range l.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ExpenseDate: item.ExpenseDate.Format("2006-01-02"),
			Origin:      item.Origin,
			Destination: item.Destination,
			Transport:   item.Transport,
			Meals:       item.Meals,
			Lodging:     item.Lodging,
			Others:      item.Others,
			Remarks:     item.Remarks,
			Total:       item.Total,
		})
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if !l.CreatedAt.IsZero() {
		resp.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName
	}
	return resp
}

// Package policy decides whether a principal may perform an action on a
// resource. Rules live in one table built from configuration.
package policy

import (
	"context"
	"net/http"
	"strings"

	"cerven-ot/internal/config"
	"cerven-ot/internal/domain"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"

	"go.uber.org/zap"
)

type Action string

const (
	OvertimeReviewLevel1 Action = "overtime.review.level1"
	OvertimeReviewLevel2 Action = "overtime.review.level2"
	OvertimeReadAll      Action = "overtime.read_all"
	LeaveDecide          Action = "leave.decide"
	LeaveReadAll         Action = "leave.read_all"
	CashAdvanceDecide    Action = "cash_advance.decide"
	CashAdvanceReadAll   Action = "cash_advance.read_all"
	LiquidationDecide    Action = "liquidation.decide"
	LiquidationReadAll   Action = "liquidation.read_all"
	TicketManage         Action = "ticket.manage"
	InventoryManage      Action = "inventory.manage"
	AttendanceReadAll    Action = "attendance.read_all"
)

var (
	ErrDenied = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to perform this action",
		http.StatusForbidden,
	)
	ErrSelfDecision = apperror.New(
		apperror.CodeForbidden,
		"you cannot decide on your own request",
		http.StatusForbidden,
	)
	ErrPositionRequired = apperror.New(
		apperror.CodeForbidden,
		"this request requires approval from a specific position",
		http.StatusForbidden,
	)
	ErrNoPrincipal = apperror.New(
		apperror.CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)
)

// Permission is a casbin resource/action pair.
type Permission struct {
	Resource string
	Action   string
}

// Rule grants an action to a role list or a casbin permission.
type Rule struct {
	Roles      []string
	Permission *Permission
	// DenySelf forbids acting on a resource the principal owns.
	DenySelf bool
	// PositionGate routes requesters in gated positions to one approver position.
	PositionGate bool
}

// Resource describes the object being acted on.
type Resource struct {
	OwnerID           string
	RequesterPosition string
}

//go:generate mockgen -source=policy.go -destination=mock/enforcer_mock.go -package=mock Enforcer

// Enforcer is satisfied by rbac.Service.
type Enforcer interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

// Authorizer is what domain services depend on; *Evaluator implements it.
type Authorizer interface {
	Authorize(ctx context.Context, p contextutil.Principal, action Action, res Resource) error
	Allows(ctx context.Context, p contextutil.Principal, action Action) bool
}

type Evaluator struct {
	rules            map[Action]Rule
	gatedPositions   []string
	approverPosition string
	enforcer         Enforcer
	logger           *zap.Logger
}

func NewEvaluator(rules map[Action]Rule, gatedPositions []string, approverPosition string, enforcer Enforcer, logger ...*zap.Logger) *Evaluator {
	l := zap.L().Named("policy.evaluator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("policy.evaluator")
	}
	return &Evaluator{
		rules:            rules,
		gatedPositions:   gatedPositions,
		approverPosition: approverPosition,
		enforcer:         enforcer,
		logger:           l,
	}
}

// NewFromConfig builds the rule table used by the API.
func NewFromConfig(cfg config.Approval, enforcer Enforcer, logger ...*zap.Logger) *Evaluator {
	denySelf := !cfg.AllowSelfApproval
	rules := map[Action]Rule{
		OvertimeReviewLevel1: {Roles: cfg.OvertimeLevel1Roles, Permission: &Permission{"overtime", "review_level1"}, DenySelf: denySelf},
		OvertimeReviewLevel2: {Roles: cfg.OvertimeLevel2Roles, Permission: &Permission{"overtime", "review_level2"}, DenySelf: denySelf},
		OvertimeReadAll:      {Roles: cfg.OvertimeReadAllRoles, Permission: &Permission{"overtime", "read_all"}},
		LeaveDecide:          {Roles: cfg.LeaveRoles, Permission: &Permission{"leave", "approve"}, DenySelf: denySelf},
		LeaveReadAll:         {Roles: cfg.LeaveRoles, Permission: &Permission{"leave", "read_all"}},
		CashAdvanceDecide:    {Roles: cfg.CashAdvanceRoles, Permission: &Permission{"cash_advance", "approve"}, DenySelf: denySelf, PositionGate: true},
		CashAdvanceReadAll:   {Roles: cfg.CashAdvanceRoles, Permission: &Permission{"cash_advance", "read_all"}},
		LiquidationDecide:    {Roles: cfg.LiquidationRoles, Permission: &Permission{"liquidation", "approve"}, DenySelf: denySelf, PositionGate: true},
		LiquidationReadAll:   {Roles: cfg.LiquidationRoles, Permission: &Permission{"liquidation", "read_all"}},
		TicketManage:         {Roles: cfg.TicketManageRoles, Permission: &Permission{"ticket", "manage"}},
		InventoryManage:      {Roles: cfg.InventoryManageRoles, Permission: &Permission{"inventory", "manage"}},
		AttendanceReadAll:    {Roles: cfg.OvertimeReadAllRoles, Permission: &Permission{"attendance", "read_all"}},
	}
	return NewEvaluator(rules, cfg.MDRequiredPositions, cfg.MDPosition, enforcer, logger...)
}

// Authorize returns nil when allowed and a 403 AppError otherwise.
func (e *Evaluator) Authorize(ctx context.Context, p contextutil.Principal, action Action, res Resource) error {
	if p.EmployeeID == "" || p.CompanyID == "" {
		return ErrNoPrincipal
	}

	rule, ok := e.rules[action]
	if !ok {
		return e.deny(ctx, p, action, ErrDenied)
	}

	if rule.DenySelf && res.OwnerID != "" && res.OwnerID == p.EmployeeID {
		return e.deny(ctx, p, action, ErrSelfDecision)
	}

	// a gated requester can only be decided by the approver position,
	// whatever roles the principal holds
	if rule.PositionGate && containsFold(e.gatedPositions, res.RequesterPosition) {
		if strings.EqualFold(strings.TrimSpace(p.Position), strings.TrimSpace(e.approverPosition)) {
			return nil
		}
		return e.deny(ctx, p, action, ErrPositionRequired.WithDetails(map[string]string{
			"required_position": e.approverPosition,
		}))
	}

	if p.HasRole(rule.Roles...) {
		return nil
	}

	if rule.Permission != nil && e.enforcer != nil {
		allowed, err := e.enforcer.Enforce(domain.EnforceRequest{
			EmployeeID: p.EmployeeID,
			CompanyID:  p.CompanyID,
			Resource:   rule.Permission.Resource,
			Action:     rule.Permission.Action,
		})
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}

	return e.deny(ctx, p, action, ErrDenied)
}

// Allows is Authorize without the error, for read scoping.
func (e *Evaluator) Allows(ctx context.Context, p contextutil.Principal, action Action) bool {
	return e.Authorize(ctx, p, action, Resource{}) == nil
}

func (e *Evaluator) deny(ctx context.Context, p contextutil.Principal, action Action, err *apperror.AppError) error {
	contextutil.GetLogger(ctx, e.logger).Info("policy denied",
		zap.String("employee_id", p.EmployeeID),
		zap.String("role", p.Role),
		zap.String("position", p.Position),
		zap.String("action", string(action)),
		zap.String("reason", err.Message),
	)
	if err.Details == nil {
		return err.WithDetails(map[string]string{"action": string(action)})
	}
	return err
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), v) {
			return true
		}
	}
	return false
}

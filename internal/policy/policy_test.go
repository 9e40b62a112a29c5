package policy_test

import (
	"context"
	"errors"
	"testing"

	"cerven-ot/internal/config"
	"cerven-ot/internal/domain"
	"cerven-ot/internal/policy"
	policyMock "cerven-ot/internal/policy/mock"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func testApproval() config.Approval {
	return config.Approval{
		OvertimeLevel1Roles: []string{"MANAGER"},
		OvertimeLevel2Roles: []string{"HR"},
		LeaveRoles:          []string{"MANAGER", "HR"},
		CashAdvanceRoles:    []string{"FINANCE"},
		LiquidationRoles:    []string{"FINANCE"},
		MDRequiredPositions: []string{"Operations Manager"},
		MDPosition:          "Managing Director",
	}
}

func principal(id, role, position string) contextutil.Principal {
	return contextutil.Principal{EmployeeID: id, CompanyID: "company-1", Role: role, Position: position}
}

func TestEvaluator_Roles(t *testing.T) {
	ctx := context.Background()
	ev := policy.NewFromConfig(testApproval(), nil)

	t.Run("level roles are separate", func(t *testing.T) {
		manager := principal("m-1", "manager", "Store Manager")
		hr := principal("h-1", "HR", "HR Officer")

		assert.NoError(t, ev.Authorize(ctx, manager, policy.OvertimeReviewLevel1, policy.Resource{OwnerID: "e-1"}))
		assert.ErrorIs(t, ev.Authorize(ctx, manager, policy.OvertimeReviewLevel2, policy.Resource{OwnerID: "e-1"}), policy.ErrDenied)
		assert.NoError(t, ev.Authorize(ctx, hr, policy.OvertimeReviewLevel2, policy.Resource{OwnerID: "e-1"}))
	})

	t.Run("self decision denied", func(t *testing.T) {
		manager := principal("m-1", "MANAGER", "")

		err := ev.Authorize(ctx, manager, policy.LeaveDecide, policy.Resource{OwnerID: "m-1"})

		assert.ErrorIs(t, err, policy.ErrSelfDecision)
		assert.Equal(t, 403, apperror.ToHTTP(err).Status)
	})

	t.Run("unknown action denied", func(t *testing.T) {
		err := ev.Authorize(ctx, principal("a", "ADMIN", ""), policy.Action("nope"), policy.Resource{})
		assert.ErrorIs(t, err, policy.ErrDenied)
	})

	t.Run("missing principal", func(t *testing.T) {
		err := ev.Authorize(ctx, contextutil.Principal{}, policy.LeaveDecide, policy.Resource{})
		assert.ErrorIs(t, err, policy.ErrNoPrincipal)
	})
}

func TestEvaluator_PositionGate(t *testing.T) {
	ctx := context.Background()
	ev := policy.NewFromConfig(testApproval(), nil)
	gated := policy.Resource{OwnerID: "e-1", RequesterPosition: "operations manager"}
	normal := policy.Resource{OwnerID: "e-1", RequesterPosition: "Technician"}

	t.Run("gated requester needs the approver position", func(t *testing.T) {
		finance := principal("f-1", "FINANCE", "Finance Officer")
		md := principal("md-1", "EMPLOYEE", "Managing Director")

		assert.ErrorIs(t, ev.Authorize(ctx, finance, policy.CashAdvanceDecide, gated), policy.ErrPositionRequired)
		assert.NoError(t, ev.Authorize(ctx, md, policy.CashAdvanceDecide, gated))
		assert.NoError(t, ev.Authorize(ctx, md, policy.LiquidationDecide, gated))
	})

	t.Run("normal requester uses roles", func(t *testing.T) {
		finance := principal("f-1", "FINANCE", "Finance Officer")
		md := principal("md-1", "EMPLOYEE", "Managing Director")

		assert.NoError(t, ev.Authorize(ctx, finance, policy.CashAdvanceDecide, normal))
		assert.ErrorIs(t, ev.Authorize(ctx, md, policy.CashAdvanceDecide, normal), policy.ErrDenied)
	})

	t.Run("self still denied for approver position", func(t *testing.T) {
		md := principal("md-1", "EMPLOYEE", "Managing Director")
		own := policy.Resource{OwnerID: "md-1", RequesterPosition: "Operations Manager"}

		assert.ErrorIs(t, ev.Authorize(ctx, md, policy.CashAdvanceDecide, own), policy.ErrSelfDecision)
	})
}

func TestEvaluator_FallsBackToCasbin(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	enforcer := policyMock.NewMockEnforcer(ctrl)
	ev := policy.NewFromConfig(testApproval(), enforcer)
	supervisor := principal("s-1", "SUPERVISOR", "")

	t.Run("granted by permission", func(t *testing.T) {
		enforcer.EXPECT().
			Enforce(domain.EnforceRequest{EmployeeID: "s-1", CompanyID: "company-1", Resource: "overtime", Action: "review_level1"}).
			Return(true, nil)

		assert.NoError(t, ev.Authorize(ctx, supervisor, policy.OvertimeReviewLevel1, policy.Resource{OwnerID: "e-1"}))
	})

	t.Run("enforcer error propagates", func(t *testing.T) {
		enforcer.EXPECT().Enforce(gomock.Any()).Return(false, errors.New("db down"))

		err := ev.Authorize(ctx, supervisor, policy.OvertimeReviewLevel1, policy.Resource{OwnerID: "e-1"})
		assert.EqualError(t, err, "db down")
	})

	t.Run("role match skips enforcer", func(t *testing.T) {
		enforcer.EXPECT().Enforce(gomock.Any()).Times(0)

		assert.True(t, ev.Allows(ctx, principal("h-1", "HR", ""), policy.LeaveReadAll))
	})
}

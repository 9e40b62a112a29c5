package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPrincipalRoundTrip(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{EmployeeID: "e-1", CompanyID: "c-1", Role: "HR"})

	p, ok := GetPrincipal(ctx)
	assert.True(t, ok)
	assert.Equal(t, "e-1", p.EmployeeID)
	assert.True(t, p.HasRole("admin", "hr"))
	assert.False(t, p.HasRole("MANAGER"))

	_, ok = GetPrincipal(context.Background())
	assert.False(t, ok)
}

func TestGetLogger_Fallbacks(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background(), nil))

	l := zap.NewNop().Named("x")
	assert.Same(t, l, GetLogger(WithLogger(context.Background(), l), nil))
}

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))

	ctx := WithUserID(WithRequestID(context.Background(), "rid"), "uid")
	ctx = WithPrincipal(ctx, Principal{EmployeeID: "e-1", CompanyID: "c-1"})

	assert.Equal(t, []zap.Field{
		zap.String("request_id", "rid"),
		zap.String("user_id", "uid"),
		zap.String("employee_id", "e-1"),
		zap.String("company_id", "c-1"),
	}, LogFields(ctx))
}

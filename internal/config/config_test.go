package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("requires jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("reads approval lists", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("APPROVAL_OVERTIME_L1_ROLES", " lead , ,manager")
		t.Setenv("APPROVAL_MD_REQUIRED_POSITIONS", "Operations Manager,Finance Head")
		t.Setenv("APPROVAL_ALLOW_SELF", "yes")

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, []string{"lead", "manager"}, cfg.Approval.OvertimeLevel1Roles)
		assert.Equal(t, []string{"HR", "ADMIN"}, cfg.Approval.OvertimeLevel2Roles)
		assert.Equal(t, []string{"Operations Manager", "Finance Head"}, cfg.Approval.MDRequiredPositions)
		assert.Equal(t, "Managing Director", cfg.Approval.MDPosition)
		assert.False(t, cfg.Approval.AllowSelfApproval)
		assert.Equal(t, "3000", cfg.Port)
	})
}

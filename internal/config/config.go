// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"cerven-ot/internal/shared/connection"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	DB        connection.DBConfig
	RedisAddr string

	KafkaBroker string

	JWTSecret     string
	RBACModelPath string

	Approval Approval
	Notify   Notify

	OTELEndpoint string
	OTELInsecure bool
}

// Approval holds the role and position lists the policy table is built from.
type Approval struct {
	OvertimeLevel1Roles  []string
	OvertimeLevel2Roles  []string
	OvertimeReadAllRoles []string
	LeaveRoles           []string
	CashAdvanceRoles     []string
	LiquidationRoles     []string
	TicketManageRoles    []string
	InventoryManageRoles []string
	MDRequiredPositions  []string
	MDPosition           string
	AllowSelfApproval    bool
}

type Notify struct {
	Provider     string
	WebhookURL   string
	WebhookToken string
}

// Load reads .env when present and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv: getEnvOrDefault("APP_ENV", "development"),
		Port:   getEnvOrDefault("PORT", "3000"),
		DB: connection.DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvOrDefault("DB_NAME", "cerven_ot"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RBACModelPath: getEnvOrDefault("RBAC_MODEL_PATH", "internal/rbac/infra/model.conf"),
		Approval: Approval{
			OvertimeLevel1Roles:  getListOrDefault("APPROVAL_OVERTIME_L1_ROLES", "MANAGER,SUPERVISOR"),
			OvertimeLevel2Roles:  getListOrDefault("APPROVAL_OVERTIME_L2_ROLES", "HR,ADMIN"),
			OvertimeReadAllRoles: getListOrDefault("APPROVAL_OVERTIME_READ_ALL_ROLES", "MANAGER,SUPERVISOR,HR,ADMIN"),
			LeaveRoles:           getListOrDefault("APPROVAL_LEAVE_ROLES", "MANAGER,HR,ADMIN"),
			CashAdvanceRoles:     getListOrDefault("APPROVAL_CASH_ADVANCE_ROLES", "FINANCE,ADMIN"),
			LiquidationRoles:     getListOrDefault("APPROVAL_LIQUIDATION_ROLES", "FINANCE,ADMIN"),
			TicketManageRoles:    getListOrDefault("TICKET_MANAGE_ROLES", "ADMIN,DISPATCHER,TECHNICIAN"),
			InventoryManageRoles: getListOrDefault("INVENTORY_MANAGE_ROLES", "ADMIN,STORE_MANAGER"),
			MDRequiredPositions:  getList("APPROVAL_MD_REQUIRED_POSITIONS"),
			MDPosition:           getEnvOrDefault("APPROVAL_MD_POSITION", "Managing Director"),
			AllowSelfApproval:    parseBoolEnv("APPROVAL_ALLOW_SELF", false),
		},
		Notify: Notify{
			Provider:     getEnvOrDefault("NOTIFY_EMAIL_PROVIDER", "log"),
			WebhookURL:   os.Getenv("NOTIFY_EMAIL_WEBHOOK_URL"),
			WebhookToken: os.Getenv("NOTIFY_EMAIL_WEBHOOK_TOKEN"),
		},
		OTELEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELInsecure: parseBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", false),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBoolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getList(key string) []string {
	return splitList(os.Getenv(key))
}

func getListOrDefault(key, def string) []string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return splitList(v)
	}
	return splitList(def)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package app

import (
	"database/sql"

	"cerven-ot/internal/attendance"
	"cerven-ot/internal/cashadvance"
	"cerven-ot/internal/config"
	"cerven-ot/internal/employee"
	"cerven-ot/internal/inventory"
	"cerven-ot/internal/leave"
	"cerven-ot/internal/liquidation"
	"cerven-ot/internal/messaging/kafka"
	"cerven-ot/internal/middleware"
	"cerven-ot/internal/overtime"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/rbac"
	"cerven-ot/internal/rbac/infra"
	"cerven-ot/internal/shared/counter"
	"cerven-ot/internal/spreadsheet"
	"cerven-ot/internal/ticket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	overtimeRepo := overtime.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	cashAdvanceRepo := cashadvance.NewRepository(gormDB)
	liquidationRepo := liquidation.NewRepository(gormDB)
	ticketRepo := ticket.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	importRunRepo := spreadsheet.NewRunRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	authorizer := policy.NewFromConfig(cfg.Approval, rbacService, logger)
	importRecorder := spreadsheet.NewRecorder(db, importRunRepo, outboxRepo)

	// --- Services ---
	employeeService := employee.NewService(employeeRepo, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, authorizer, logger)
	overtimeService := overtime.NewService(db, overtimeRepo, attendanceRepo, attendanceRepo, outboxRepo, authorizer, logger)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, authorizer, logger)
	cashAdvanceService := cashadvance.NewService(db, cashAdvanceRepo, outboxRepo, authorizer, logger)
	liquidationService := liquidation.NewService(db, liquidationRepo, cashAdvanceRepo, outboxRepo, authorizer, logger)
	ticketService := ticket.NewService(db, ticketRepo, counterRepo, inventoryRepo, importRecorder, authorizer, logger)
	inventoryService := inventory.NewService(db, inventoryRepo, rdb, importRecorder, authorizer, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService)
	overtimeHandler := overtime.NewHandler(overtimeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	cashAdvanceHandler := cashadvance.NewHandler(cashAdvanceService, logger)
	liquidationHandler := liquidation.NewHandler(liquidationService, logger)
	ticketHandler := ticket.NewHandler(ticketService, logger)
	inventoryHandler := inventory.NewHandler(inventoryService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(20, 40))
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService, employeeService, logger)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, employeeService, logger)
		overtime.RegisterRoutes(api, overtimeHandler, employeeService, rdb, logger)
		leave.RegisterRoutes(api, leaveHandler, employeeService, rdb, logger)
		cashadvance.RegisterRoutes(api, cashAdvanceHandler, employeeService, rdb, logger)
		liquidation.RegisterRoutes(api, liquidationHandler, employeeService, rdb, logger)
		ticket.RegisterRoutes(api, ticketHandler, employeeService, rdb, logger)
		inventory.RegisterRoutes(api, inventoryHandler, employeeService, rdb, logger)
		rbac.RegisterRoutes(api.Group("", middleware.AuthMiddleware()), rbacHandler)
	}

	return nil
}

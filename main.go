// @title           RICD Portal API
// @version         1.0
// @description     Grants management portal for remote indigenous community development. Councils submit monthly, quarterly and stage reports against construction projects; RICD staff review and monitor budgets.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	_ "portal/docs"
	"portal/handlers"
	"portal/services"
	"portal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:9000",
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Authorization", "Content-Type", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func main() {
	db := storage.InitDB()
	gdb := storage.InitGormDB()

	// Nightly scan for overdue reports, plus session cleanup
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("0 2 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting nightly maintenance")
		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
		if _, err := services.RunOverdueScan(gdb, time.Now()); err != nil {
			log.Printf("Overdue scan failed: %v", err)
		}
		log.Println("Nightly maintenance completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule nightly maintenance: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & SESSION ====================
	r.POST("/api/login", handlers.LoginHandler(db, gdb))
	r.POST("/api/refresh", handlers.RefreshTokenHandler(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/auth/forgot_password", handlers.ForgotPasswordHandler(db))
	r.POST("/api/auth/reset_password/:token", handlers.ResetPasswordHandler(db))
	r.POST("/api/change_password", handlers.ChangePasswordHandler(db))
	r.GET("/api/users", handlers.ListUsersHandler(db, gdb))
	r.POST("/api/users", handlers.CreateUserHandler(db, gdb))
	r.PUT("/api/users/:user_id", handlers.UpdateUserHandler(db, gdb))
	r.GET("/api/groups", handlers.ListGroupsHandler(db, gdb))
	r.GET("/api/activity_logs", handlers.GetActivityLogsHandler(db, gdb))

	// ==================== 2. COUNCILS & USERS ====================
	r.GET("/api/councils", handlers.ListCouncilsHandler(db, gdb))
	r.GET("/api/councils/:id", handlers.GetCouncilHandler(db, gdb))
	r.POST("/api/councils", handlers.SaveCouncilHandler(db, gdb))
	r.POST("/api/user-profiles", handlers.SaveUserProfileHandler(db, gdb))

	// ==================== 3. PROJECTS & WORKS ====================
	r.GET("/api/projects", handlers.ListProjectsHandler(db, gdb))
	r.GET("/api/projects/:project_id", handlers.GetProjectHandler(db, gdb))
	r.POST("/api/projects", handlers.CreateProjectHandler(db, gdb))
	r.PUT("/api/projects/:project_id", handlers.UpdateProjectHandler(db, gdb))
	r.GET("/api/works", handlers.ListWorksHandler(db, gdb))
	r.POST("/api/works", handlers.CreateWorkHandler(db, gdb))
	r.PUT("/api/works/:id", handlers.UpdateWorkHandler(db, gdb))
	r.POST("/api/addresses", handlers.CreateAddressHandler(db, gdb))
	r.GET("/api/work-types", handlers.ListWorkTypesHandler(db, gdb))
	r.GET("/api/output-types", handlers.ListOutputTypesHandler(db, gdb))
	r.GET("/api/works/:id/qr", handlers.GenerateWorkQRCodeHandler(db, gdb))

	// ==================== 4. MONTHLY TRACKERS ====================
	r.GET("/api/tracker/monthly", handlers.GetMonthlyTrackerTableHandler(db, gdb))
	r.POST("/api/tracker/monthly/bulk-save", handlers.BulkSaveMonthlyEntriesHandler(db, gdb))
	r.POST("/api/tracker/monthly/entries/:id/workflow", handlers.MonthlyEntryWorkflowHandler(db, gdb))

	// ==================== 5. QUARTERLY REPORTS ====================
	r.GET("/api/reports/quarterly", handlers.GetQuarterlyReportTableHandler(db, gdb))
	r.POST("/api/reports/quarterly/bulk-save", handlers.BulkSaveQuarterlyEntriesHandler(db, gdb))
	r.POST("/api/reports/quarterly/entries/:id/workflow", handlers.QuarterlyEntryWorkflowHandler(db, gdb))
	r.PUT("/api/reports/quarterly/:id", handlers.UpdateQuarterlyReportHandler(db, gdb))

	// ==================== 6. STAGE REPORTS ====================
	r.GET("/api/projects/:project_id/stage1-report", handlers.GetStage1ReportHandler(db, gdb))
	r.PUT("/api/projects/:project_id/stage1-report", handlers.UpsertStage1ReportHandler(db, gdb))
	r.POST("/api/projects/:project_id/stage1-report/steps", handlers.SetStage1StepCompletionHandler(db, gdb))
	r.GET("/api/projects/:project_id/stage2-report", handlers.GetStage2ReportHandler(db, gdb))
	r.PUT("/api/projects/:project_id/stage2-report", handlers.UpsertStage2ReportHandler(db, gdb))
	r.POST("/api/projects/:project_id/stage2-report/steps", handlers.SetStage2StepCompletionHandler(db, gdb))

	// ==================== 7. REPORT CONFIGURATION ====================
	r.GET("/api/config/monthly-items", handlers.ListMonthlyTrackerItemsHandler(db, gdb))
	r.POST("/api/config/monthly-items", handlers.SaveMonthlyTrackerItemHandler(db, gdb))
	r.DELETE("/api/config/monthly-items/:id", handlers.DeactivateMonthlyTrackerItemHandler(db, gdb))
	r.GET("/api/config/quarterly-items", handlers.ListQuarterlyReportItemsHandler(db, gdb))
	r.POST("/api/config/quarterly-items", handlers.SaveQuarterlyReportItemHandler(db, gdb))
	r.GET("/api/config/stage1-steps", handlers.ListStage1StepsHandler(db, gdb))
	r.POST("/api/config/stage1-steps", handlers.SaveStage1StepHandler(db, gdb))
	r.GET("/api/config/stage2-steps", handlers.ListStage2StepsHandler(db, gdb))
	r.POST("/api/config/stage2-steps", handlers.SaveStage2StepHandler(db, gdb))
	r.GET("/api/projects/:project_id/report-configuration", handlers.GetProjectReportConfigurationHandler(db, gdb))
	r.PUT("/api/projects/:project_id/report-configuration", handlers.UpdateProjectReportConfigurationHandler(db, gdb))
	r.GET("/api/config/site", handlers.GetSiteConfigurationHandler(db, gdb))
	r.PUT("/api/config/site", handlers.UpdateSiteConfigurationHandler(db, gdb))

	// ==================== 8. ANALYTICS & ALERTS ====================
	r.GET("/api/dashboard", handlers.GetDashboardHandler(db, gdb))
	r.GET("/api/analytics/budget", handlers.GetBudgetAnalyticsHandler(db, gdb))
	r.GET("/api/analytics/report-alerts", handlers.GetReportAlertsHandler(db, gdb))
	r.POST("/api/analytics/overdue-scan", handlers.RunOverdueScanHandler(db, gdb))
	r.GET("/api/notifications", handlers.ListNotificationsHandler(db, gdb))

	// ==================== 9. EXPORT ====================
	r.GET("/api/export/works", handlers.ExportWorksExcelHandler(db, gdb))
	r.GET("/api/export/alerts", handlers.ExportAlertsPDFHandler(db, gdb))
	r.POST("/api/entries/:kind/:entry_id/document", handlers.UploadEntryDocumentHandler(db, gdb))
	r.POST("/api/stage_steps/:stage/:completion_id/document", handlers.UploadStepDocumentHandler(db, gdb))
	r.GET("/api/documents", handlers.ServeDocumentHandler(db))

	// ==================== 10. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}

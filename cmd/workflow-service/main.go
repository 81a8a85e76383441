package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/clm-workflow/internal/audit"
	"github.com/nurpe/clm-workflow/internal/auth"
	"github.com/nurpe/clm-workflow/internal/config"
	"github.com/nurpe/clm-workflow/internal/db"
	"github.com/nurpe/clm-workflow/internal/excel"
	httphandler "github.com/nurpe/clm-workflow/internal/http"
	"github.com/nurpe/clm-workflow/internal/http/middleware"
	"github.com/nurpe/clm-workflow/internal/logger"
	"github.com/nurpe/clm-workflow/internal/pdf"
	"github.com/nurpe/clm-workflow/internal/repository"
	"github.com/nurpe/clm-workflow/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	workflowRepo := repository.NewWorkflowRepository(database)
	rbacRepo := repository.NewRBACRepository(database)
	exportRepo := repository.NewExportRepository(database)
	auditRepo := repository.NewAuditRepository(database)

	recorder := audit.NewRecorder(auditRepo, log, cfg.Workflow.AuditBufferSize)
	defer recorder.Close()

	workflowService := service.NewWorkflowService(workflowRepo, rbacRepo, recorder, cfg)
	exportService := service.NewExportService(exportRepo, excel.NewGenerator(), pdf.NewGenerator())

	go runExpirySweep(workflowService, log, time.Duration(cfg.Workflow.ExpirySweepHours)*time.Hour)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(workflowService, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting workflow service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func runExpirySweep(workflow *service.WorkflowService, log zerolog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		expired, err := workflow.ExpireOverdue(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("expiry sweep failed")
			continue
		}
		if expired > 0 {
			log.Info().Int("expired", expired).Msg("expired overdue contracts")
		}
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/askhat/gigledger/internal/auth"
	"github.com/askhat/gigledger/internal/config"
	"github.com/askhat/gigledger/internal/db"
	"github.com/askhat/gigledger/internal/excel"
	httphandler "github.com/askhat/gigledger/internal/http"
	"github.com/askhat/gigledger/internal/http/middleware"
	"github.com/askhat/gigledger/internal/logger"
	"github.com/askhat/gigledger/internal/pdf"
	"github.com/askhat/gigledger/internal/repository"
	"github.com/askhat/gigledger/internal/service"
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

	ledgerRepo := repository.NewLedgerRepository(database)
	reportRepo := repository.NewReportRepository(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	contractService := service.NewContractService(ledgerRepo)
	paymentService := service.NewPaymentService(ledgerRepo, cfg)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdfGenerator, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, paymentService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

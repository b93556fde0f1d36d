package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmarieta/chatarra/internal/attachment"
	"github.com/dmarieta/chatarra/internal/config"
	"github.com/dmarieta/chatarra/internal/database"
	"github.com/dmarieta/chatarra/internal/employee"
	employeeStore "github.com/dmarieta/chatarra/internal/employee/store"
	chatarraHttp "github.com/dmarieta/chatarra/internal/http"
	employeeHandler "github.com/dmarieta/chatarra/internal/http/employee"
	ledgerHandler "github.com/dmarieta/chatarra/internal/http/ledger"
	txHandler "github.com/dmarieta/chatarra/internal/http/transaction"
	"github.com/dmarieta/chatarra/internal/ledger"
	ledgerStore "github.com/dmarieta/chatarra/internal/ledger/store"
	"github.com/dmarieta/chatarra/internal/notify"
	"github.com/dmarieta/chatarra/internal/sequence"
	seqStore "github.com/dmarieta/chatarra/internal/sequence/store"
	"github.com/dmarieta/chatarra/internal/transaction"
	txStore "github.com/dmarieta/chatarra/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		generator       = sequence.NewGenerator(seqStore.New(db), cfg.Sequence.Prefix, cfg.Sequence.Width)
		pipeline        = attachment.NewPipeline(attachment.NewHTTPUploader(cfg.Storage.BaseURL, cfg.Storage.Token), cfg.Storage.UploadTimeout)
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		employeeService = employee.NewService(employeeStore.New(db))

		transactionService = transaction.NewService(
			txStore.New(db), generator, pipeline, ledgerService, employeeService, notify.Log{})
	)

	var (
		transactionH = txHandler.NewHandler(transactionService)
		ledgerH      = ledgerHandler.NewHandler(ledgerService)
		employeeH    = employeeHandler.NewHandler(employeeService)
	)

	router := chatarraHttp.New(cfg.Auth.JWTSecret, transactionH, ledgerH, employeeH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

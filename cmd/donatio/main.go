package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"

	"github.com/streamtip/donatio/internal/alert"
	"github.com/streamtip/donatio/internal/config"
	"github.com/streamtip/donatio/internal/donatio"
	"github.com/streamtip/donatio/internal/http_api"
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/internal/notificator"
	"github.com/streamtip/donatio/internal/payment"
	"github.com/streamtip/donatio/internal/ranks"
	"github.com/streamtip/donatio/internal/repository"
	"github.com/streamtip/donatio/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "donatio",
		Usage: "Donatio is a livestream donation and alert service",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"a"}, Usage: "HTTP API port"},
			&cli.StringFlag{Name: "storage", Aliases: []string{"S"}, Usage: "Storage backend (memory or postgres)"},
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.BoolFlag{Name: "seed-donors", Usage: "Seed the illustrative leaderboard"},
			&cli.DurationFlag{Name: "payment-delay", Usage: "Simulated payment processing time"},
			&cli.DurationFlag{Name: "alert-duration", Usage: "How long a donation alert stays visible"},
			&cli.BoolFlag{Name: "sound", Usage: "Emit the donation sound cue"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("port") {
		cfg.APIPort = c.Int("port")
	}
	if c.IsSet("storage") {
		cfg.Storage = c.String("storage")
	}
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("seed-donors") {
		cfg.SeedDonors = c.Bool("seed-donors")
	}
	if c.IsSet("payment-delay") {
		cfg.PaymentDelay = c.Duration("payment-delay")
	}
	if c.IsSet("alert-duration") {
		cfg.AlertDisplayDuration = c.Duration("alert-duration")
	}
	if c.IsSet("sound") {
		cfg.SoundEnabled = c.Bool("sound")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var db models.Repository
	if cfg.Storage == config.StoragePostgres {
		db, err = repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
	} else {
		db = repository.NewMemoryDB()
	}

	clk := clock.New()

	// Initialize relays
	var relays []models.AlertRelay
	if cfg.TelegramEnabled() {
		telegram, err := notificator.NewTelegramNotificator(ctx, log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram relay: %v", err)
		}
		relays = append(relays, telegram)
	}
	if cfg.EmailEnabled() {
		relays = append(relays, notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.SMTPRecipient))
	}

	slot := alert.NewSlot(log.With("component", "alert"), alert.Options{
		DisplayDuration: cfg.AlertDisplayDuration,
		LingerDuration:  cfg.AlertLingerDuration,
		Clock:           clk,
		Sound:           notificator.NewSound(log, cfg.SoundEnabled),
	})
	gateway := payment.NewSimulator(log.With("component", "payment"), payment.DefaultCatalog(), clk, cfg.PaymentDelay)

	donatioApp := donatio.NewDonatio(
		db,
		ranks.DefaultTable(),
		gateway,
		slot,
		notificator.NewNotificator(log, relays...),
		log,
		cfg,
		clk,
	)
	if err := donatioApp.Start(ctx); err != nil {
		return fmt.Errorf("failed to start donatio: %v", err)
	}

	apiServer := http_api.NewHTTPServer(donatioApp, cfg.APIPort, cfg.CORSAllowedOrigins, log)
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down HTTP server", "error", err)
	}
	if err := donatioApp.Stop(); err != nil {
		log.Error("Failed to stop donatio", "error", err)
	}
	return nil
}

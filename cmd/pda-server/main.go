package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdalabel/pdalabel/internal/config"
	"github.com/pdalabel/pdalabel/internal/domain/establishment"
	"github.com/pdalabel/pdalabel/internal/domain/identity"
	"github.com/pdalabel/pdalabel/internal/domain/medication"
	"github.com/pdalabel/pdalabel/internal/domain/prescription"
	"github.com/pdalabel/pdalabel/internal/domain/resident"
	"github.com/pdalabel/pdalabel/internal/export"
	"github.com/pdalabel/pdalabel/internal/label"
	"github.com/pdalabel/pdalabel/internal/platform/auth"
	"github.com/pdalabel/pdalabel/internal/platform/db"
	"github.com/pdalabel/pdalabel/internal/platform/middleware"
)

// establishmentCheckAdapter adapts the establishment repository to the
// resident.EstablishmentChecker interface, avoiding a circular import
// between the two domain packages.
type establishmentCheckAdapter struct {
	repo establishment.Repository
}

func (a *establishmentCheckAdapter) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// residentCheckAdapter adapts the resident repository to the
// prescription.ResidentChecker interface.
type residentCheckAdapter struct {
	repo resident.Repository
}

func (a *residentCheckAdapter) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// medicationCheckAdapter adapts the medication repository to the
// prescription.MedicationChecker interface.
type medicationCheckAdapter struct {
	repo medication.Repository
}

func (a *medicationCheckAdapter) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pda-server",
		Short: "Pharmacy PDA label server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour)
			svc := identity.NewService(identity.NewRepoPG(pool), issuer, cfg.IsAdminEmail)

			u := identity.User{Email: email}
			if name != "" {
				u.Name = &name
			}
			if err := svc.Create(ctx, &u, password); err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s)\n", u.Email, u.ID)
			if cfg.IsAdminEmail(u.Email) {
				fmt.Println("This account is on the administrator allowlist.")
			}
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Account email")
	createCmd.Flags().String("password", "", "Account password")
	createCmd.Flags().String("name", "", "Display name")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("refusing to start with unsafe config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Repositories
	establishmentRepo := establishment.NewRepoPG(pool)
	residentRepo := resident.NewRepoPG(pool)
	medicationRepo := medication.NewRepoPG(pool)
	prescriptionRepo := prescription.NewRepoPG(pool)
	userRepo := identity.NewRepoPG(pool)

	// Services
	establishmentSvc := establishment.NewService(establishmentRepo, residentRepo)
	residentSvc := resident.NewService(residentRepo,
		&establishmentCheckAdapter{repo: establishmentRepo}, prescriptionRepo, inTx)
	medicationSvc := medication.NewService(medicationRepo, prescriptionRepo, inTx)
	prescriptionSvc := prescription.NewService(prescriptionRepo,
		&residentCheckAdapter{repo: residentRepo},
		&medicationCheckAdapter{repo: medicationRepo})

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour)
	identitySvc := identity.NewService(userRepo, issuer, cfg.IsAdminEmail)

	// Label subsystem
	labelSource := label.NewSourcePG(pool)
	labelSvc := label.NewService(labelSource, logger)
	bandedRenderer, err := label.NewPDFRenderer(label.StyleBanded)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build banded renderer")
	}
	plainRenderer, err := label.NewPDFRenderer(label.StylePlain)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build plain renderer")
	}
	rasterRenderer, err := label.NewRasterRenderer(label.DefaultDotsPerMM)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build raster renderer")
	}
	printViewRenderer, err := label.NewPrintViewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build print view renderer")
	}
	labelHandler := label.NewHandler(labelSvc, bandedRenderer, plainRenderer, rasterRenderer, printViewRenderer)

	residentLoader := func(ctx context.Context, establishmentID uuid.UUID) ([]label.Option, error) {
		residents, _, err := residentRepo.ListByEstablishment(ctx, establishmentID, 1000, 0)
		if err != nil {
			return nil, err
		}
		opts := make([]label.Option, 0, len(residents))
		for _, r := range residents {
			opts = append(opts, label.Option{ID: r.ID, Label: r.DisplayName()})
		}
		return opts, nil
	}
	prescriptionLoader := func(ctx context.Context, residentIDs []uuid.UUID, activeOnly bool) ([]label.Option, error) {
		prescriptions, err := prescriptionRepo.ListByResidents(ctx, residentIDs, activeOnly)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(prescriptions))
		for i, p := range prescriptions {
			ids[i] = p.ID
		}
		data, err := labelSource.FetchData(ctx, ids)
		if err != nil {
			return nil, err
		}
		opts := make([]label.Option, 0, len(prescriptions))
		for _, p := range prescriptions {
			d, ok := data[p.ID]
			if !ok {
				continue
			}
			opts = append(opts, label.Option{
				ID:    p.ID,
				Label: fmt.Sprintf("%s, %s %s", d.MedicationName, d.ResidentLastName, d.ResidentFirstName),
			})
		}
		return opts, nil
	}
	workflowRegistry := label.NewWorkflowRegistry(residentLoader, prescriptionLoader, logger)
	workflowHandler := label.NewWorkflowHandler(workflowRegistry, labelHandler)

	// Export
	exportSvc := export.NewService(export.NewSourcePG(pool))

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Trace(logger, cfg.VerboseTracing))

	// Auth: every API route requires a session except login and the
	// health probe.
	skipper := func(c echo.Context) bool {
		p := c.Request().URL.Path
		return p == "/health" || p == "/api/v1/auth/login"
	}
	e.Use(auth.Middleware(issuer, skipper))

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// Routes
	apiV1 := e.Group("/api/v1")
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterPublicRoutes(apiV1)
	identityHandler.RegisterAdminRoutes(apiV1)
	establishment.NewHandler(establishmentSvc).RegisterRoutes(apiV1)
	resident.NewHandler(residentSvc).RegisterRoutes(apiV1)
	medication.NewHandler(medicationSvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	labelHandler.RegisterRoutes(apiV1)
	workflowHandler.RegisterRoutes(apiV1)
	export.NewHandler(exportSvc).RegisterRoutes(apiV1)

	// Start
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

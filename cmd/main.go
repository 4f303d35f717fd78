package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Su57/stardew/internal/config"
	"github.com/Su57/stardew/internal/database/postgres"
	redisdb "github.com/Su57/stardew/internal/database/redis"
	"github.com/Su57/stardew/internal/handlers"
	"github.com/Su57/stardew/internal/metrics"
	"github.com/Su57/stardew/internal/repository"
	"github.com/Su57/stardew/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "stardew",
		Short: "Admin backend with captcha login, sessions and role/permission checks",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLog()
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Info("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default menus, the admin role and the super admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLog()

			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := services.NewSeeder(
				repository.NewUserRepository(db),
				repository.NewRoleRepository(db),
				repository.NewMenuRepository(db),
				services.NewBcryptHasher(bcrypt.DefaultCost),
			)
			if err := seeder.Seed(cmd.Context(), cfg.SeedCfg); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			log.Infof("seeded super admin %s", cfg.SeedCfg.AdminEmail)
			return nil
		},
	}
}

func bootstrap() (*config.AdminServiceConfig, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error setting up logging: %w", err)
	}
	return cfg, closeLog, nil
}

// setupLogging writes JSON logs to a daily file under LogDir, or to stdout
// when no directory is configured.
func setupLogging(cfg *config.AdminServiceConfig) (func(), error) {
	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if cfg.LogDir == "" {
		log.SetOutput(os.Stdout)
		return func() {}, nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(cfg.LogDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(file)
	return func() { file.Close() }, nil
}

func openDatabase(ctx context.Context, cfg *config.AdminServiceConfig) (*sqlx.DB, error) {
	log.Infof("connecting to PostgreSQL: host=%s, port=%s, user=%s, dbname=%s",
		cfg.PostgresCfg.Host, cfg.PostgresCfg.Port, cfg.PostgresCfg.Username, cfg.PostgresCfg.DBname)

	db, err := postgres.ConnectWithRetry(ctx, cfg.PostgresCfg, 5*time.Second, 6)
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runServer(cfg *config.AdminServiceConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redisdb.NewRedisClient(ctx, cfg.RedisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, cfg.PostgresCfg.DBname),
	)
	m := metrics.NewMetrics(registry)

	// repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)
	captchaRepo := repository.NewCaptchaRepository(redisClient)

	// services
	jwtService, err := services.NewJWTService(cfg.AuthCfg.JWTSecret)
	if err != nil {
		return err
	}
	hasher := services.NewBcryptHasher(bcrypt.DefaultCost)
	sessionService := services.NewSessionService(sessionRepo, time.Duration(cfg.AuthCfg.TokenExpiredMinutes)*time.Minute)
	captchaService := services.NewCaptchaService(captchaRepo, cfg.AuthCfg.CaptchaCharLength,
		time.Duration(cfg.AuthCfg.CaptchaExpiredMinutes)*time.Minute)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, jwtService, sessionService, captchaService, cfg.AuthCfg.JWTPrefix)
	userService := services.NewUserService(userRepo, roleRepo, hasher, sessionService)
	roleService := services.NewRoleService(roleRepo, menuRepo)
	menuService := services.NewMenuService(menuRepo, roleRepo)
	authorizer := services.NewAuthorizer(jwtService, sessionService, cfg.AuthCfg.JWTPrefix)

	// handlers
	middleware := handlers.NewMiddleware(authorizer, m)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestLogger(m))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": db,
		"redis":    redisdb.NewHealthProbe(redisClient),
	}).RegisterRoutes(r)
	handlers.NewAuthHandler(authService, middleware, m).RegisterRoutes(r)
	handlers.NewUserHandler(userService, middleware).RegisterRoutes(r)
	handlers.NewRoleHandler(roleService, middleware).RegisterRoutes(r)
	handlers.NewMenuHandler(menuService, middleware).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting stardew on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shareport/shareport/internal/app"
	"github.com/shareport/shareport/internal/blob"
	"github.com/shareport/shareport/internal/config"
	"github.com/shareport/shareport/internal/http/handler"
	"github.com/shareport/shareport/internal/http/router"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/service"
	"github.com/shareport/shareport/internal/tools/loadgen"
)

const keyPrefix = "shareport"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shareport",
		Short:         "Backend for the file sharing dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(loadgenCommand())
	return root
}

func loadgenCommand() *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate synthetic share link traffic against a running instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Printf("requests=%d errors=%d duration=%s\n", result.Total, result.Errors, result.Duration.Round(time.Millisecond))
			for class, count := range result.ByClass {
				fmt.Printf("  %s: %d\n", class, count)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "target instance base URL")
	cmd.Flags().StringSliceVar(&cfg.PublicIDs, "public-id", nil, "share link ids to request (random ids when empty)")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "mixed", "request mix: share, health or mixed")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 10*time.Second, "how long to run")
	cmd.Flags().IntVar(&cfg.RPS, "rps", 20, "requests per second")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 4, "concurrent workers")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 42, "rng seed for target selection")
	return cmd
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.InitLogging(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return err
	}

	db, err := repository.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap database handle: %w", err)
	}

	sessions := repository.NewSessionRepository(db)
	attempts := repository.NewLoginAttemptRepository(db)
	projects := repository.NewProjectRepository(db)
	files := repository.NewFileRepository(db)
	settings := repository.NewShareSettingsRepository(db)
	passwords := repository.NewSharePasswordRepository(db)
	downloads := repository.NewDownloadLogRepository(db)

	// Redis is optional: without it lookup caching stays in process and
	// idempotency keys are not honored.
	var redisClient *redis.Client
	var lookupCache service.ShareLookupCache
	var idempotency service.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lookupCache = service.NewRedisShareLookupCache(redisClient, keyPrefix, cfg.NegativeCacheTTL)
		idempotency = service.NewRedisIdempotencyStore(redisClient, keyPrefix)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process lookup cache and skipping idempotency")
		lookupCache = service.NewInMemoryShareLookupCache(cfg.NegativeCacheTTL)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure blob backend: %w", err)
	}

	throttle := service.NewLoginThrottle(attempts, cfg.LoginMaxAttempts, cfg.LoginWindow)
	auth := service.NewAuthService(sessions, throttle, cfg.AdminPassword, cfg.AdminBypassToken, cfg.SessionPepper, cfg.SessionTTL)
	settingsSvc := service.NewShareSettingsService(settings)
	gate := service.NewShareAccessService(files, passwords, downloads, settingsSvc, blobs, lookupCache, cfg.DownloadURLTTL)
	fileSvc := service.NewFileService(files, projects, passwords, settingsSvc, lookupCache)
	projectSvc := service.NewProjectService(projects, settingsSvc)

	probes := []router.ReadinessProbe{
		{Name: "database", Check: sqlDB.PingContext},
	}
	if redisClient != nil {
		probes = append(probes, router.ReadinessProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, cfg.CookieSecure),
		ProjectHandler:   handler.NewProjectHandler(projectSvc),
		FileHandler:      handler.NewFileHandler(fileSvc),
		SettingsHandler:  handler.NewSettingsHandler(settingsSvc),
		ShareHandler:     handler.NewShareHandler(gate),
		Auth:             auth,
		Idempotency:      idempotency,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		ReadinessProbes:  probes,
		EnableOTelHTTP:   cfg.EnableOTelHTTP,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	err = app.New(cfg, logger, server, runtime, sessions).Run(ctx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	return err
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case "static":
		return blob.NewStaticStore(cfg.BlobBaseURL)
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.BlobBackend)
	}
}

// Server runs the portfolio admin gate: the REST API on HTTP_ADDR and gRPC health on GRPC_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/audit"
	"github.com/ninadrathod/my-website/internal/config"
	"github.com/ninadrathod/my-website/internal/devotp"
	devotphandler "github.com/ninadrathod/my-website/internal/devotp/handler"
	"github.com/ninadrathod/my-website/internal/gallery"
	galleryhandler "github.com/ninadrathod/my-website/internal/gallery/handler"
	"github.com/ninadrathod/my-website/internal/gate"
	gatehandler "github.com/ninadrathod/my-website/internal/gate/handler"
	"github.com/ninadrathod/my-website/internal/health"
	healthhandler "github.com/ninadrathod/my-website/internal/health/handler"
	"github.com/ninadrathod/my-website/internal/logger"
	"github.com/ninadrathod/my-website/internal/notify"
	"github.com/ninadrathod/my-website/internal/otp"
	"github.com/ninadrathod/my-website/internal/policy/engine"
	resumehandler "github.com/ninadrathod/my-website/internal/resume/handler"
	resumerepo "github.com/ninadrathod/my-website/internal/resume/repository"
	"github.com/ninadrathod/my-website/internal/security"
	"github.com/ninadrathod/my-website/internal/server"
	"github.com/ninadrathod/my-website/internal/session"
	"github.com/ninadrathod/my-website/internal/telemetry"
	"github.com/ninadrathod/my-website/internal/telemetry/metrics"
	telemetryotel "github.com/ninadrathod/my-website/internal/telemetry/otel"
	"github.com/ninadrathod/my-website/internal/telemetry/producer"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "portfolio-gate",
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.close()
	log.Info("ledger store ready", zap.String("driver", cfg.StoreDriver))

	signer, pub, ephemeral, err := security.LoadSigningKeys(cfg.GrantPrivateKey, cfg.GrantPublicKey)
	if err != nil {
		return fmt.Errorf("grant keys: %w", err)
	}
	if ephemeral {
		log.Warn("GRANT_PRIVATE_KEY not set; using an ephemeral key, grants do not survive a restart")
	}
	grants := security.NewGrantProvider(signer, pub, cfg.GrantIssuer, cfg.GrantAudience, cfg.GrantDuration(), nil)

	policySrc, err := engine.LoadPolicy(afero.NewOsFs(), cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	policy, err := engine.NewOPAEvaluator(ctx, policySrc)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	m := metrics.New()
	emitters := telemetry.Fanout{m, telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	var kafka producer.Producer
	if kp := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsTopic); kp != nil {
		kafka = kp
		emitters = append(emitters, kp)
		log.Info("gate events to kafka", zap.String("topic", kp.Topic()))
	}
	events := telemetry.NewDispatcher(emitters, logger.WithComponent(log, "events"))

	sessions := session.NewLedger(st.sessions, nil)
	codes := otp.NewLedger(st.codes, security.NewHasher(cfg.OTPHashCost), cfg.OTPLength, cfg.OTPDuration(), nil)

	deps := gate.Deps{
		Sessions: sessions,
		Codes:    codes,
		Grants:   grants,
		Policy:   policy,
		Events:   events,
		Audit:    audit.NewLogger(st.audit, audit.ClientIP, logger.WithComponent(log, "audit")),
		Log:      logger.WithComponent(log, "gate"),
	}
	var devHandler *devotphandler.Handler
	if cfg.OTPReturnToClient && !cfg.IsProduction() {
		store := devotp.NewMemoryStore()
		deps.DevOTP = store
		devHandler = devotphandler.New(store)
		log.Warn("dev OTP mode: codes are readable at GET /dev/otp and not sent")
	} else {
		n, err := newNotifier(cfg, log)
		if err != nil {
			return err
		}
		deps.Notifier = n
	}
	g, err := gate.New(gate.Config{
		AdminEmails:   cfg.AdminEmailList(),
		SessionTTL:    cfg.SessionDuration(),
		NotifyTimeout: cfg.NotifyDuration(),
		MailSubject:   cfg.MailSubject,
	}, deps)
	if err != nil {
		return err
	}

	checker := health.NewChecker()
	checker.Add("sessions", sessions)
	checker.Add("otp", codes)
	checker.AddPolicy("policy", policy)

	var resume *resumehandler.Handler
	if cfg.MongoURI != "" {
		repo, err := resumerepo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			// Resume routes answer 500 when the store was unreachable at startup.
			log.Error("resume store unavailable", zap.Error(err))
			resume = resumehandler.New(nil, log)
		} else {
			defer repo.Close(context.Background())
			checker.Add("resume", repo)
			resume = resumehandler.New(repo, logger.WithComponent(log, "resume"))
		}
	}

	images, err := gallery.NewStore(afero.NewOsFs(), cfg.GalleryDir)
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Gate:        gatehandler.New(g, logger.WithComponent(log, "gate")),
		Gallery:     galleryhandler.New(images, g, cfg.UploadMaxBytes, logger.WithComponent(log, "gallery")),
		Resume:      resume,
		Health:      healthhandler.NewHTTP(checker, log),
		DevOTP:      devHandler,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins(),
		Log:         logger.WithComponent(log, "http"),
	})
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	grpcSrv := server.NewGRPCServer(server.GRPCDeps{Checker: checker, Log: logger.WithComponent(log, "grpc")})
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		go func() {
			log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
	defer cancelDrain()
	if err := events.Drain(drainCtx); err != nil {
		log.Warn("telemetry drain", zap.Error(err))
	}
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			log.Warn("kafka close", zap.Error(err))
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("otel shutdown", zap.Error(err))
	}
	log.Info("stopped")
	return runErr
}

func newNotifier(cfg *config.Config, log *zap.Logger) (notify.Notifier, error) {
	switch cfg.NotifyProvider {
	case config.NotifyWebhook:
		return notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookAPIKey), nil
	case config.NotifyMailgun:
		return notify.NewMailgunNotifier(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase, cfg.MailFrom), nil
	case config.NotifyLog:
		reveal := !cfg.IsProduction()
		if !reveal {
			log.Warn("NOTIFY_PROVIDER=log in production: codes are not delivered")
		}
		return notify.NewLogNotifier(logger.WithComponent(log, "notify"), reveal), nil
	}
	return nil, fmt.Errorf("notify: unknown provider %q", cfg.NotifyProvider)
}

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scc-freight/freight-api/internal/adapters/httpapi"
	memfleetrepo "github.com/scc-freight/freight-api/internal/adapters/memory/fleetrepo"
	memloadrepo "github.com/scc-freight/freight-api/internal/adapters/memory/loadrepo"
	memmailer "github.com/scc-freight/freight-api/internal/adapters/memory/mailer"
	memuserrepo "github.com/scc-freight/freight-api/internal/adapters/memory/userrepo"
	memverifytokenrepo "github.com/scc-freight/freight-api/internal/adapters/memory/verifytokenrepo"
	postgres "github.com/scc-freight/freight-api/internal/adapters/postgres"
	pgfleetrepo "github.com/scc-freight/freight-api/internal/adapters/postgres/fleetrepo"
	pgloadrepo "github.com/scc-freight/freight-api/internal/adapters/postgres/loadrepo"
	pguserrepo "github.com/scc-freight/freight-api/internal/adapters/postgres/userrepo"
	pgverifytokenrepo "github.com/scc-freight/freight-api/internal/adapters/postgres/verifytokenrepo"
	smtpmailer "github.com/scc-freight/freight-api/internal/adapters/smtp"
	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/app/fleets"
	"github.com/scc-freight/freight-api/internal/app/loads"
	"github.com/scc-freight/freight-api/internal/platform/auth/token"
	platformclock "github.com/scc-freight/freight-api/internal/platform/clock"
	"github.com/scc-freight/freight-api/internal/platform/config"
	"github.com/scc-freight/freight-api/internal/platform/logging"
	fleetrepoport "github.com/scc-freight/freight-api/internal/ports/out/fleetrepo"
	loadrepoport "github.com/scc-freight/freight-api/internal/ports/out/loadrepo"
	mailerport "github.com/scc-freight/freight-api/internal/ports/out/mailer"
	userrepoport "github.com/scc-freight/freight-api/internal/ports/out/userrepo"
	verifytokenrepoport "github.com/scc-freight/freight-api/internal/ports/out/verifytokenrepo"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("freight-api", "info", "json")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logging.New("freight-api", cfg.LogLevel, cfg.LogFormat)

	clk := platformclock.NewSystemClock()
	signer := token.New(token.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	})

	var (
		userRepo   userrepoport.Repository
		fleetRepo  fleetrepoport.Repository
		loadRepo   loadrepoport.Repository
		verifyRepo verifytokenrepoport.Repository
		cleanup    func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		cleanup = pool.Close

		userRepo = pguserrepo.NewRepo(pool)
		fleetRepo = pgfleetrepo.NewRepo(pool)
		loadRepo = pgloadrepo.NewRepo(pool)
		verifyRepo = pgverifytokenrepo.NewRepo(pool)
	default:
		users := memuserrepo.NewRepo()
		userRepo = users
		fleetRepo = memfleetrepo.NewRepo(users)
		loadRepo = memloadrepo.NewRepo()
		verifyRepo = memverifytokenrepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	var mail mailerport.Mailer
	switch cfg.Mailer {
	case "smtp":
		mail = smtpmailer.New(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	default:
		mail = memmailer.NewLogMailer(log)
	}

	accountsSvc := accounts.NewService(userRepo, verifyRepo, mail, signer, clk, log, cfg.BaseURL, cfg.VerifyTokenTTL)
	fleetsSvc := fleets.NewService(fleetRepo, userRepo, clk)
	loadsSvc := loads.NewService(loadRepo, userRepo, clk)

	api := httpapi.NewServer(accountsSvc, fleetsSvc, loadsSvc, log)
	handler := httpapi.NewRouter(api, signer, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageBackend).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

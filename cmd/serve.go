package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/phillip/donation-hub-go/config"
	controllers "github.com/phillip/donation-hub-go/controllers"
	"github.com/phillip/donation-hub-go/payments"
	routes "github.com/phillip/donation-hub-go/routes"
	"github.com/phillip/donation-hub-go/services"
	"github.com/phillip/donation-hub-go/store"
	utils "github.com/phillip/donation-hub-go/utils"
)

func newServeCmd() *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = ":" + cfg.Port
			}
			return runServe(cmd.Context(), addr)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	return c
}

// buildDeps wires services over st.
func buildDeps(cfg *config.Config, log *zap.Logger, st store.Store) *controllers.Deps {
	gateway := payments.New(payments.Options{
		Delay:       cfg.PaymentDelay,
		FailureRate: cfg.PaymentFailureRate,
	})
	mailer := utils.NewZeptoMailer(cfg, log.Named("mail"))

	d := &controllers.Deps{
		Config:    cfg,
		Store:     st,
		History:   services.NewHistoryService(st, log.Named("history")),
		Donations: services.NewDonationService(st, gateway, mailer, log.Named("donations")),
		Log:       log,
	}

	uploader, err := utils.NewCloudinaryUploader(cfg)
	switch {
	case errors.Is(err, utils.ErrUploadsDisabled):
		log.Info("cloudinary not configured, image uploads disabled")
	case err != nil:
		log.Warn("cloudinary init failed, image uploads disabled", zap.Error(err))
	default:
		d.Uploader = uploader
	}
	return d
}

func runServe(parent context.Context, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(buildDeps(cfg, logger, st))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

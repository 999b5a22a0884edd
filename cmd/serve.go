package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/api"
	"github.com/sells-group/trackcore/internal/config"
	"github.com/sells-group/trackcore/internal/srtm"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the track algorithms as a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := buildDeps(cfg)
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		addr := fmt.Sprintf(":%d", port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		}

		zap.L().Info("starting server",
			zap.String("addr", addr),
			zap.String("srtm_dir", cfg.SRTM.DataDir),
			zap.Float64("rate_limit", deps.RateLimit),
		)

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// buildDeps translates the configuration into the API's core components.
func buildDeps(c *config.Config) (api.Deps, error) {
	alg, err := c.DistanceAlgorithm()
	if err != nil {
		return api.Deps{}, err
	}
	s, err := c.Simplifier()
	if err != nil {
		return api.Deps{}, err
	}
	params, err := c.SmoothParams()
	if err != nil {
		return api.Deps{}, err
	}
	mode, err := c.SRTMMode()
	if err != nil {
		return api.Deps{}, err
	}

	return api.Deps{
		Distance:    alg,
		Simplifier:  s,
		Smooth:      params,
		Grid:        srtm.NewOSGrid(c.SRTM.DataDir, srtm.WithMode(mode)),
		RateLimit:   c.Server.RateLimit,
		Burst:       c.Server.Burst,
		CORSOrigins: c.Server.CORSOrigins,
	}, nil
}

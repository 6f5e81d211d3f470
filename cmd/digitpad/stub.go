package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"digitpad/internal/classifierstub"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a fake classifier implementing the predict and train endpoints",
	Args:  cobra.NoArgs,
	RunE:  runStub,
}

func init() {
	stubCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	stubCmd.Flags().Int("always", -1, "always predict this digit instead of the expected one")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	addr, _ := cmd.Flags().GetString("addr")
	stub := classifierstub.New(logger.WithComponent("stub"))
	if d, _ := cmd.Flags().GetInt("always"); d >= 0 && d <= 9 {
		stub.SetScorer(classifierstub.FixedScorer(d))
	}

	srv := &http.Server{Addr: addr, Handler: stub.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("stub classifier listening", "addr", addr)

	select {
	case <-cmd.Context().Done():
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

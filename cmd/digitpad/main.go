// digitpad is the headless client: it feeds PNG drawings through the
// normalization pipeline and talks to the classifier, and can serve a fake
// classifier for local use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "digitpad",
	Short:         "Draw, predict and train handwritten digits against a remote classifier",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file (default: platform config dir)")
	rootCmd.PersistentFlags().String("classifier-url", "", "classifier base URL, overrides config")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

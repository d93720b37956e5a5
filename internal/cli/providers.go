package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

var providersTimeout time.Duration

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Check the configured reasoning providers",
	Long: `Providers asks each language-reasoning provider selected for the classifier,
bias and verifier roles whether it is reachable, and lists the capabilities
that run in neutral-default mode because no credential is configured.

Exits non-zero if a configured provider does not answer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if down := checkProviders(cmd.Context(), os.Stdout, a, providersTimeout); down > 0 {
			return fmt.Errorf("%d provider(s) unavailable", down)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.Flags().DurationVar(&providersTimeout, "timeout", 15*time.Second, "time limit per provider check")
}

// checkProviders prints one line per role and capability and returns the
// number of configured providers that are unreachable
func checkProviders(ctx context.Context, w io.Writer, a *app, timeout time.Duration) int {
	down := 0
	for _, r := range a.reasoners {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		ok := r.provider.IsAvailable(checkCtx)
		cancel()

		status := "available"
		if !ok {
			status = "unavailable"
			down++
		}
		fmt.Fprintf(w, "%-12s %-10s %s\n", r.role, r.provider.Name(), status)
	}

	disabled := slices.Clone(a.disabled)
	slices.Sort(disabled)
	for _, name := range disabled {
		fmt.Fprintf(w, "%-12s %-10s %s\n", name, "-", "not configured")
	}
	return down
}

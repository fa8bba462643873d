// Command offboardctl is the operator CLI for the offboarding service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/offboarding/internal/app"
	"github.com/matthewbaird/offboarding/internal/config"
	"github.com/matthewbaird/offboarding/internal/offboarding"
	"github.com/matthewbaird/offboarding/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// withApp loads config, wires the app and runs fn against it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, cfg.Logger("offboardctl"), nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "offboardctl",
		Short:         "Operate the tenant offboarding workflow",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newOffboardCmd(),
		newStatusCmd(),
		newBalanceCmd(),
		newDisposeCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				a.Logger.Info("database migrated")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo properties, leases and obligations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return seed.Demo(ctx, a.Store, a.Currency, a.Logger)
			})
		},
	}
}

func newOffboardCmd() *cobra.Command {
	var (
		depType       string
		date          string
		notes         string
		actor         string
		markAvailable bool
	)
	cmd := &cobra.Command{
		Use:   "offboard <lease-id>",
		Short: "Terminate a lease and run the offboarding steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			departure := time.Now().UTC()
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				departure = d
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Orchestrator.Execute(ctx, offboarding.Input{
					LeaseID:           args[0],
					DepartureType:     offboarding.DepartureType(depType),
					DepartureDate:     departure,
					Notes:             notes,
					MarkUnitAvailable: markAvailable,
					Actor:             actor,
				})
				if perr := printJSON(cmd, res); perr != nil {
					return perr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&depType, "type", string(offboarding.DepartureVoluntary), "departure type (voluntary, eviction, non_renewal, mutual, abandonment)")
	cmd.Flags().StringVar(&date, "date", "", "departure date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form departure notes")
	cmd.Flags().StringVar(&actor, "actor", "offboardctl", "actor recorded on the lease and departure")
	cmd.Flags().BoolVar(&markAvailable, "mark-available", false, "mark the unit available from the departure date")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <lease-id>",
		Short: "Show which offboarding records exist for a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				st, err := a.Orchestrator.Status(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, st)
			})
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <lease-id>",
		Short: "Show the outstanding balance on a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				bal, err := a.Orchestrator.Balance(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, bal)
			})
		},
	}
}

func newDisposeCmd() *cobra.Command {
	var (
		disposition  string
		depositCents int64
		actor        string
	)
	cmd := &cobra.Command{
		Use:   "dispose <lease-id>",
		Short: "Resolve the outstanding balance by write-off, deposit or collections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := offboarding.DispositionRequest{
				LeaseID:     args[0],
				Disposition: offboarding.Disposition(disposition),
				Actor:       actor,
			}
			if cmd.Flags().Changed("deposit-cents") {
				req.DepositToApplyCents = &depositCents
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Disposition.Handle(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&disposition, "disposition", "", "write_off, apply_deposit or collections")
	cmd.Flags().Int64Var(&depositCents, "deposit-cents", 0, "deposit to apply, in cents (apply_deposit only)")
	cmd.Flags().StringVar(&actor, "actor", "offboardctl", "actor recorded in the activity log")
	cmd.MarkFlagRequired("disposition")
	return cmd
}

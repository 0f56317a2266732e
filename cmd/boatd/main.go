package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/app"
	"github.com/Freeeeeet/boat_booking/internal/auth"
	"github.com/Freeeeeet/boat_booking/internal/config"
	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/Freeeeeet/boat_booking/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "boatd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "boatd",
		Short:         "Boat ticket booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("database-url", "", "postgres://..., sqlite://path or memory://")
	root.PersistentFlags().String("environment", "", "production or development")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newReconcileCommand(),
		newSeedCommand(),
		newTokenCommand(),
	)
	return root
}

// setup loads configuration from every flag visible to cmd and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	flags := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	flags.AddFlagSet(cmd.InheritedFlags())
	flags.AddFlagSet(cmd.LocalFlags())

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the seat reconciliation task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting boatd",
				zap.String("environment", cfg.Environment),
				zap.String("timezone", cfg.Timezone),
				zap.Bool("restore_seats_on_cancel", cfg.RestoreSeatsOnCancel),
			)

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Warn("Close failed", zap.Error(err))
				}
			}()

			return a.Serve(ctx)
		},
	}
	cmd.Flags().String("http-addr", "", "HTTP listen address")
	cmd.Flags().Duration("reconcile-interval", 0, "seat reconciliation period, 0 disables")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := app.OpenDatabase(cmd.Context(), cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Migrate(cmd.Context())
		},
	}
}

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Report schedules whose seat counter disagrees with their bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg.AMQPURL = ""
			cfg.TelegramToken = ""
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			drifts := app.NewScheduler(a.Schedules, 0, logger).Reconcile(cmd.Context())
			if drifts == nil {
				drifts = []model.SeatDrift{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(drifts)
		},
	}
}

func newSeedCommand() *cobra.Command {
	var (
		days int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo fleet, routes and upcoming sailings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg.AMQPURL = ""
			cfg.TelegramToken = ""
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			result, err := a.Schedules.SeedDemoData(cmd.Context(), days, rand.New(rand.NewPCG(seed, seed)))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().IntVar(&days, "days", service.DefaultSeedDays, "number of days to generate sailings for, starting today")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, defaults to the current time")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		userID int64
		admin  bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive id")
			}
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireJWTSecret(); err != nil {
				return err
			}

			issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
			if err != nil {
				return err
			}
			token, expiresAt, err := issuer.Issue(model.Actor{UserID: userID, Admin: admin})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id carried in the token")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator access")
	return cmd
}


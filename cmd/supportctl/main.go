package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"support-desk/internal/app"
	"support-desk/internal/config"
	"support-desk/internal/db"
	"support-desk/internal/service"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "supportctl",
		Short:         "Operational tasks for the support desk backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSweepTokensCommand())
	cmd.AddCommand(newSlotsCommand())
	return cmd
}

// env arma config, logger y pool para un subcomando.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &env{cfg: cfg, logger: logger, pool: pool}, nil
}

func (e *env) close() {
	e.pool.Close()
	_ = e.logger.Sync()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()
			return db.Migrate(ctx, e.pool)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the status of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()
			return db.MigrationStatus(ctx, e.pool)
		},
	})
	return cmd
}

func newSweepTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-tokens",
		Short: "Delete expired OTP and password reset tokens once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			sweeper, err := service.NewTokenSweeper(e.logger, app.NewRepositories(e.pool).Tokens, e.cfg.TokenSweepSchedule, nil)
			if err != nil {
				return err
			}
			deleted, err := sweeper.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired tokens\n", deleted)
			return nil
		},
	}
}

func newSlotsCommand() *cobra.Command {
	var (
		ticketID int64
		date     string
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free booking slots of a service request for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			availability := service.NewAvailabilityService(app.NewRepositories(e.pool).Bookings, e.cfg.Location())
			slots, err := availability.AvailableSlots(ctx, ticketID, date)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "START\tEND")
			for _, s := range slots {
				fmt.Fprintf(w, "%s\t%s\n", s.StartTime, s.EndTime)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&ticketID, "ticket", 0, "Service request id")
	cmd.Flags().StringVar(&date, "date", "", "Day to inspect (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("ticket")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

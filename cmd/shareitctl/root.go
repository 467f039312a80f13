package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/seed"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type app struct {
	out        io.Writer
	configPath string
	output     string
	verbose    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "shareitctl",
		Short:         "Administer a shareit database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfig, "path to config.yaml")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputAuto, "output format: auto, table or json")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		a.backupCmd(),
		a.exportCmd(),
		a.seedCmd(),
		a.queueCmd(),
	)
	return root
}

func (a *app) logger() *zerolog.Logger {
	l := zerolog.Nop()
	if a.verbose {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return &l
}

func (a *app) open() (*config.Config, *database.DB, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewDB(cfg.Database.Path, a.logger())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the database and prune old copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			backups := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, a.logger())
			path, err := backups.PerformBackup(cmd.Context())
			if err != nil {
				return err
			}
			removed := backups.CleanupOldBackups()

			return a.render(map[string]any{"path": path, "removed": removed}, func(w io.Writer) {
				fmt.Fprintf(w, "Backup written to %s (%d old backups removed)\n", path, removed)
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var (
		state string
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "export OWNER_ID",
		Short: "Export an owner's bookings to an XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || ownerID <= 0 {
				return fmt.Errorf("invalid owner id %q", args[0])
			}
			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			bookings := service.NewBookingService(db, nil, time.Now, a.logger())
			list, err := bookings.ListByOwner(cmd.Context(), ownerID, models.BookingState(state))
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Exports.Path
			}
			path, err := export.SaveBookingsXLSX(dir, ownerID, list, time.Now())
			if err != nil {
				return err
			}

			return a.render(map[string]any{"path": path, "bookings": len(list)}, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d booking(s) to %s\n", len(list), path)
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", string(models.StateAll), "booking state filter")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default exports.path)")
	return cmd
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Create users and items listed in a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			log := a.logger()
			res, err := seed.Apply(cmd.Context(), f,
				service.NewUserService(db, log),
				service.NewItemService(db, time.Now, log),
				log)
			if err != nil {
				return err
			}

			return a.render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Seeded %d user(s) and %d item(s)\n", res.Users, res.Items)
			})
		},
	}
}

func (a *app) queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List notifications that exhausted their retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			failed, err := db.GetFailedNotifications(cmd.Context())
			if err != nil {
				return err
			}
			if failed == nil {
				failed = []models.Notification{}
			}
			return a.render(failed, func(w io.Writer) { printNotifications(w, failed) })
		},
	}
}

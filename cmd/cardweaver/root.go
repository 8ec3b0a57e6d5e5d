package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/internal/platform"
	"github.com/aretw0/cardweaver/pkg/core"
)

// app carries the persistent flags and the resources shared by subcommands.
type app struct {
	verbose  bool
	dir      string
	adapter  string
	dsn      string
	readOnly bool

	logger  *slog.Logger
	dataDir string
	config  platform.Config
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	rootCmd := &cobra.Command{
		Use:   "cardweaver",
		Short: "Flashcard decks and notes for focused study sessions",
		Long: `cardweaver keeps decks of flashcards and freeform notes in a local data
directory (.cardweaver) and runs shuffled, filtered quiz sessions against them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(a.logger)

			return platform.LoadEnv()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&a.dir, "dir", "d", "", "Data directory (default: nearest .cardweaver, or $CARDWEAVER_DIR)")
	flags.StringVar(&a.adapter, "adapter", "", "Storage adapter: fs, sql or memory")
	flags.StringVar(&a.dsn, "dsn", "", "Database DSN for the sql adapter (sqlite://file.db, postgres://...)")
	flags.BoolVar(&a.readOnly, "read-only", false, "Open the data directory without writing to it")

	rootCmd.AddCommand(
		newInitCmd(a),
		newDeckCmd(a),
		newCardCmd(a),
		newNoteCmd(a),
		newGenerateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newQuizCmd(a),
		newWatchCmd(a),
		newStateCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// resolve finds the data directory and loads its config.
func (a *app) resolve() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	dataDir, err := platform.DataDir(a.dir, wd)
	if err != nil {
		return err
	}
	cfg, err := platform.LoadConfig(dataDir)
	if err != nil {
		return err
	}
	a.dataDir, a.config = dataDir, cfg
	return nil
}

// open builds the store. Without autoInit the data directory must exist.
func (a *app) open(ctx context.Context, autoInit bool) (*core.Store, error) {
	if err := a.resolve(); err != nil {
		return nil, err
	}

	opts := []platform.Option{
		platform.WithConfig(a.config),
		platform.WithLogger(a.logger),
	}
	if a.adapter != "" {
		opts = append(opts, platform.WithAdapter(a.adapter))
	}
	if a.dsn != "" {
		opts = append(opts, platform.WithDSN(a.dsn))
	}
	if a.readOnly {
		opts = append(opts, platform.WithReadOnly(true))
	}
	if autoInit {
		opts = append(opts, platform.WithAutoInit(true))
	} else {
		opts = append(opts, platform.WithMustExist(true))
	}

	store, err := platform.New(ctx, a.dataDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s (run `cardweaver init` first?): %w", a.dataDir, err)
	}
	return store, nil
}

// withStore opens the store for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *core.Store) error) error {
	ctx := cmd.Context()
	store, err := a.open(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}()
	return fn(ctx, store)
}

// capabilities builds the collaborators from the loaded config.
func (a *app) capabilities() platform.Capabilities {
	return platform.NewCapabilities(a.config, a.logger)
}

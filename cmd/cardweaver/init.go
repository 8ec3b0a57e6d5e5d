package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/internal/platform"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a cardweaver data directory",
		Long: `Initialize creates the data directory (.cardweaver in the current directory
unless --dir is given), seeds empty deck and note collections and writes a
default cardweaver.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.dir == "" && os.Getenv(platform.EnvDir) == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				// Never reuse a parent's data directory on init.
				a.dir = filepath.Join(wd, platform.SystemDir)
			}

			store, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer store.Close()

			configPath := filepath.Join(a.dataDir, platform.ConfigFile)
			if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) && !a.readOnly && isDir(a.dataDir) {
				if err := platform.SaveConfig(a.dataDir, platform.Config{Adapter: platform.AdapterFS}); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized cardweaver data directory in", a.dataDir)
			return nil
		},
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

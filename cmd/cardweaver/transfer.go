package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/transfer"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file or pattern]...",
		Short: "Import decks from JSON or YAML files",
		Long: `Import reads deck files (a single deck object or an array of decks) and
stores every deck under fresh ids. Arguments may be doublestar patterns such
as "exports/**/*.{json,yaml}". Decks read before an invalid record are kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				var (
					total int
					errs  []error
				)
				for _, arg := range args {
					var (
						decks []core.Deck
						err   error
					)
					if strings.ContainsAny(arg, "*?[{") {
						decks, err = transfer.ImportGlob(ctx, store, arg)
					} else {
						decks, err = transfer.ImportFile(ctx, store, arg)
					}
					for _, d := range decks {
						fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s, %d flashcards)\n", d.Name, d.ID, len(d.Flashcards))
					}
					total += len(decks)
					if err != nil {
						errs = append(errs, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d deck(s) imported.\n", total)
				return errors.Join(errs...)
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		all    bool
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export [deck-id]...",
		Short: "Export decks to a JSON or YAML file",
		Long: `Export writes one deck as an object, or several decks as an array. The
format follows the --out extension (.json, .yaml, .yml); without --out the
decks are written to stdout in --format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass deck ids or --all")
			}
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				var decks []core.Deck
				if all {
					var err error
					if decks, err = store.AllDecks(ctx); err != nil {
						return err
					}
				} else {
					for _, id := range args {
						deck, err := requireDeck(ctx, store, id)
						if err != nil {
							return err
						}
						decks = append(decks, deck)
					}
				}

				if out != "" {
					if err := transfer.ExportFile(out, decks...); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d deck(s) exported to %s\n", len(decks), out)
					return nil
				}
				codec, err := transfer.CodecFor("stdout." + format)
				if err != nil {
					return err
				}
				return transfer.Export(cmd.OutOrStdout(), codec, decks...)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Export every deck")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.Flags().StringVar(&format, "format", "json", "Format for stdout: json or yaml")
	return cmd
}

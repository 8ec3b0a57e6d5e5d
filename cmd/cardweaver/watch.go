package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cwlifecycle "github.com/aretw0/cardweaver/pkg/adapters/lifecycle"
	"github.com/aretw0/cardweaver/pkg/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var collection string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes made to the data directory until interrupted",
		Long: `Watch follows the deck and note collections on disk and prints a line for
every change, including edits made by other processes. Only the fs adapter
can be watched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []cwlifecycle.SourceOption
			switch collection {
			case "":
			case string(core.CollectionDecks), string(core.CollectionNotes):
				opts = append(opts, cwlifecycle.OnlyCollection(core.Collection(collection)))
			default:
				return fmt.Errorf("unknown collection %q: use decks or notes", collection)
			}

			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				events, err := store.Watch(ctx)
				if err != nil {
					return err
				}
				source := cwlifecycle.NewSource(events, opts...)
				if err := source.Start(ctx); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", a.dataDir)
				for e := range source.Events() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format(time.TimeOnly), e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "Only report decks or notes")
	return cmd
}

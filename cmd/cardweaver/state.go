package main

import (
	"context"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/core"
)

// stateReport is the output of `cardweaver state`.
type stateReport struct {
	DataDir    string         `json:"data_dir"`
	Store      any            `json:"store"`
	Decks      int            `json:"decks"`
	Flashcards int            `json:"flashcards"`
	Mastered   int            `json:"mastered"`
	Notes      int            `json:"notes"`
	Tags       []string       `json:"tags"`
	Config     map[string]any `json:"config"`
}

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the state of the store as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				decks, err := store.AllDecks(ctx)
				if err != nil {
					return err
				}
				notes, err := store.AllNotes(ctx)
				if err != nil {
					return err
				}

				report := stateReport{
					DataDir: a.dataDir,
					Decks:   len(decks),
					Notes:   len(notes),
					Tags:    core.AllTags(append(core.DeckTags(decks), core.NoteTags(notes)...)...),
					Config: map[string]any{
						"adapter":   a.config.Adapter,
						"read_only": a.config.ReadOnly || a.readOnly,
						"speech":    a.config.SpeechCommand != "",
						"clipboard": a.config.ClipboardCommand != "",
						"assistant": a.config.AssistantCommand != "",
					},
				}
				for _, d := range decks {
					mastered, total := core.DeckProgress(d)
					report.Flashcards += total
					report.Mastered += mastered
				}
				var intro introspection.Introspectable = store
				report.Store = intro.State()

				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

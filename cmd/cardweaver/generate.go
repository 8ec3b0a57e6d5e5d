package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/assistant"
	"github.com/aretw0/cardweaver/pkg/core"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		name, topic, fromFile, fromNote string
		dryRun                          bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a deck with the configured assistant",
		Long: `Generate asks the assistant program (assistant_command in cardweaver.yaml or
CARDWEAVER_ASSISTANT_CMD) for flashcards, either about a topic or summarizing
a text file or an existing note, and saves them as a new deck.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := 0
			for _, s := range []string{topic, fromFile, fromNote} {
				if s != "" {
					sources++
				}
			}
			if sources != 1 {
				return errors.New("exactly one of --topic, --from-file or --from-note is required")
			}

			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				gen := a.capabilities().Assistant

				var (
					cards  []assistant.Card
					source assistant.Source
					input  string
					err    error
				)
				switch {
				case topic != "":
					input, source = topic, assistant.SourceTopic
					if name == "" {
						name = topic
					}
					cards, err = gen.GenerateFromTopic(ctx, topic)
				default:
					if fromNote != "" {
						note, nerr := requireNote(ctx, store, fromNote)
						if nerr != nil {
							return nerr
						}
						input = note.Content
						if name == "" {
							name = note.Title
						}
					} else {
						if input, err = readContent(cmd.InOrStdin(), fromFile); err != nil {
							return err
						}
					}
					if name == "" {
						name = "Summary"
					}
					source = assistant.SourceSummary
					cards, err = gen.SummarizeIntoCards(ctx, input)
				}
				if err != nil {
					return err
				}

				deck := assistant.NewDeckFromCards(name, source, input, cards)
				if dryRun {
					return printJSON(cmd.OutOrStdout(), deck)
				}
				saved, err := store.InsertDeck(ctx, deck)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deck created: %s (%d flashcards)\n", saved.ID, len(saved.Flashcards))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Deck name (defaults to the topic or note title)")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic or free text to generate cards about")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Summarize a text file into cards (- for stdin)")
	cmd.Flags().StringVar(&fromNote, "from-note", "", "Summarize an existing note into cards")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated deck without saving it")
	return cmd
}

func newCardImageCmd(a *app) *cobra.Command {
	var (
		side   string
		prompt string
	)
	cmd := &cobra.Command{
		Use:   "image [deck-id] [card-id]",
		Short: "Generate an image for one side of a flashcard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if side != "front" && side != "back" {
				return fmt.Errorf("unknown side %q: use front or back", side)
			}
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				card, ok := deck.Flashcard(args[1])
				if !ok {
					return fmt.Errorf("flashcard not found: %s", args[1])
				}

				text := prompt
				if text == "" {
					text = card.Front
					if side == "back" {
						text = card.Back
					}
				}
				image, err := a.capabilities().Assistant.GenerateImage(ctx, text)
				if err != nil {
					return err
				}
				if side == "front" {
					card.FrontImage = image
				} else {
					card.BackImage = image
				}
				if _, _, err := store.UpdateFlashcardInDeck(ctx, deck.ID, card); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Image attached to the %s of %s\n", side, card.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&side, "side", "front", "Side to illustrate: front or back")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Image prompt (defaults to the side's text)")
	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/core"
)

func newCardCmd(a *app) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage the flashcards of a deck",
	}
	cardCmd.AddCommand(
		newCardAddCmd(a),
		newCardEditCmd(a),
		newCardStatusCmd(a),
		newCardDeleteCmd(a),
		newCardImageCmd(a),
	)
	return cardCmd
}

type cardFlags struct {
	title, front, back, status, frontImage, backImage string
}

func (f *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Card title")
	cmd.Flags().StringVar(&f.front, "front", "", "Question side")
	cmd.Flags().StringVar(&f.back, "back", "", "Answer side")
	cmd.Flags().StringVar(&f.status, "status", "", "learning or mastered")
	cmd.Flags().StringVar(&f.frontImage, "front-image", "", "Image reference for the front (data URI)")
	cmd.Flags().StringVar(&f.backImage, "back-image", "", "Image reference for the back (data URI)")
}

// apply copies the flags the user set onto fc.
func (f *cardFlags) apply(cmd *cobra.Command, fc core.Flashcard) (core.Flashcard, error) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		fc.Title = f.title
	}
	if flags.Changed("front") {
		fc.Front = f.front
	}
	if flags.Changed("back") {
		fc.Back = f.back
	}
	if flags.Changed("front-image") {
		fc.FrontImage = f.frontImage
	}
	if flags.Changed("back-image") {
		fc.BackImage = f.backImage
	}
	if flags.Changed("status") {
		st := core.Status(f.status)
		if !st.Valid() {
			return fc, fmt.Errorf("unknown status %q: use learning or mastered", f.status)
		}
		fc.Status = st
	}
	return fc, nil
}

func newCardAddCmd(a *app) *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "add [deck-id]",
		Short: "Add a flashcard to a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := f.apply(cmd, core.Flashcard{})
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				card, ok, err := store.AddFlashcardToDeck(ctx, args[0], fc)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("deck not found: %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flashcard added: %s\n", card.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.MarkFlagRequired("front")
	cmd.MarkFlagRequired("back")
	return cmd
}

func newCardEditCmd(a *app) *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "edit [deck-id] [card-id]",
		Short: "Change a flashcard in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				current, ok := deck.Flashcard(args[1])
				if !ok {
					return fmt.Errorf("flashcard not found: %s", args[1])
				}
				updated, err := f.apply(cmd, current)
				if err != nil {
					return err
				}
				if _, ok, err := store.UpdateFlashcardInDeck(ctx, deck.ID, updated); err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("flashcard not found: %s", args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flashcard updated: %s\n", updated.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newCardStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "status [deck-id] [card-id] [learning|mastered]",
		Short:     "Set the mastery status of a flashcard",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{string(core.StatusLearning), string(core.StatusMastered)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				card, ok, err := store.SetFlashcardStatus(ctx, args[0], args[1], core.Status(args[2]))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("flashcard not found: %s/%s", args[0], args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flashcard %s is now %s\n", card.ID, card.Status)
				return nil
			})
		},
	}
}

func newCardDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [deck-id] [card-id]",
		Short: "Remove a flashcard from a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				if _, ok := deck.Flashcard(args[1]); !ok {
					return fmt.Errorf("flashcard not found: %s", args[1])
				}
				if err := store.DeleteFlashcardFromDeck(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Flashcard deleted: %s\n", args[1])
				return nil
			})
		},
	}
}

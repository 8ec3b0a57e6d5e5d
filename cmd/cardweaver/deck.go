package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/transfer"
)

func newDeckCmd(a *app) *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	deckCmd.AddCommand(
		newDeckListCmd(a),
		newDeckShowCmd(a),
		newDeckCreateCmd(a),
		newDeckEditCmd(a),
		newDeckDeleteCmd(a),
		newDeckDuplicateCmd(a),
		newDeckCopyCmd(a),
	)
	return deckCmd
}

func newDeckListCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		query  string
		tags   []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				decks, err := store.AllDecks(ctx)
				if err != nil {
					return err
				}
				decks = core.FilterDecks(decks, query, splitTags(tags))
				core.SortDecksNewestFirst(decks)

				if asJSON {
					return printJSON(cmd.OutOrStdout(), decks)
				}
				if len(decks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No decks yet.")
					return nil
				}
				return printDecks(cmd.OutOrStdout(), decks)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by text in name or description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Filter by tag (repeatable)")
	return cmd
}

func newDeckShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [deck-id]",
		Short: "Show a deck and its flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), deck)
				}
				return printDeck(cmd.OutOrStdout(), deck)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newDeckCreateCmd(a *app) *cobra.Command {
	var (
		name, description, color string
		tags                     []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := store.SaveDeck(ctx, core.Deck{
					Name:        name,
					Description: description,
					AccentColor: color,
					Tags:        splitTags(tags),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deck created: %s\n", deck.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Deck name")
	cmd.Flags().StringVar(&description, "description", "", "Deck description")
	cmd.Flags().StringVar(&color, "color", "", "Accent color")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newDeckEditCmd(a *app) *cobra.Command {
	var (
		name, description, color string
		tags                     []string
	)
	cmd := &cobra.Command{
		Use:   "edit [deck-id]",
		Short: "Change the name, description, color or tags of a deck",
		Long:  `Edit updates deck metadata. Flashcards are kept as they are.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					deck.Name = name
				}
				if flags.Changed("description") {
					deck.Description = description
				}
				if flags.Changed("color") {
					deck.AccentColor = color
				}
				if flags.Changed("tag") {
					deck.Tags = splitTags(tags)
				}
				saved, err := store.SaveDeck(ctx, deck)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deck updated: %s\n", saved.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&color, "color", "", "New accent color")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable)")
	return cmd
}

func newDeckDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [deck-id]",
		Short: "Delete a deck and all of its flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				if _, err := requireDeck(ctx, store, args[0]); err != nil {
					return err
				}
				if err := store.DeleteDeck(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deck deleted: %s\n", args[0])
				return nil
			})
		},
	}
}

func newDeckDuplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate [deck-id]",
		Short: "Copy a deck and its flashcards under fresh ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				clone, ok, err := store.DuplicateDeck(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("deck not found: %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deck duplicated: %s (%s)\n", clone.ID, clone.Name)
				return nil
			})
		},
	}
}

func newDeckCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy [deck-id]",
		Short: "Copy a deck as JSON to the clipboard for sharing",
		Long: `Copy places the deck export on the clipboard, ready to be pasted into a
file and imported elsewhere. Requires clipboard_command (or
CARDWEAVER_CLIPBOARD_CMD) to be configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				deck, err := requireDeck(ctx, store, args[0])
				if err != nil {
					return err
				}
				if a.config.ClipboardCommand == "" {
					return fmt.Errorf("no clipboard command configured")
				}
				var buf bytes.Buffer
				if err := transfer.Export(&buf, transfer.JSONCodec{}, deck); err != nil {
					return err
				}
				if err := a.capabilities().Clipboard.Copy(ctx, buf.String()); err != nil {
					return &core.CollaboratorError{Op: "copy", Message: "Could not copy deck to clipboard.", Err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deck copied to clipboard.")
				return nil
			})
		},
	}
}

func requireDeck(ctx context.Context, store *core.Store, id string) (core.Deck, error) {
	deck, ok, err := store.GetDeck(ctx, id)
	if err != nil {
		return core.Deck{}, err
	}
	if !ok {
		return core.Deck{}, fmt.Errorf("deck not found: %s", id)
	}
	return deck, nil
}

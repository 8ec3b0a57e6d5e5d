package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/cardweaver/pkg/core"
)

func newNoteCmd(a *app) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}
	noteCmd.AddCommand(
		newNoteListCmd(a),
		newNoteShowCmd(a),
		newNoteCreateCmd(a),
		newNoteEditCmd(a),
		newNotePinCmd(a),
		newNoteDuplicateCmd(a),
		newNoteDeleteCmd(a),
		newNoteAnalyzeCmd(a),
	)
	return noteCmd
}

func newNoteListCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		query  string
		tags   []string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortOrder := core.NoteSort(order)
			if !slices.Contains(noteSorts, sortOrder) {
				return fmt.Errorf("unknown sort %q", order)
			}
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				notes, err := store.AllNotes(ctx)
				if err != nil {
					return err
				}
				notes = core.FilterNotes(notes, query, splitTags(tags))
				core.SortNotes(notes, sortOrder)

				if asJSON {
					return printJSON(cmd.OutOrStdout(), notes)
				}
				if len(notes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No notes yet.")
					return nil
				}
				return printNotes(cmd.OutOrStdout(), notes)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by text in title or content")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Filter by tag (repeatable)")
	cmd.Flags().StringVar(&order, "sort", string(core.SortUpdatedDesc), "Sort order: createdAt_desc, createdAt_asc, updatedAt_desc, updatedAt_asc, title_asc, title_desc")
	return cmd
}

var noteSorts = []core.NoteSort{
	core.SortCreatedDesc, core.SortCreatedAsc,
	core.SortUpdatedDesc, core.SortUpdatedAsc,
	core.SortTitleAsc, core.SortTitleDesc,
}

func newNoteShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [note-id]",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				note, err := requireNote(ctx, store, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), note)
				}
				printNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

type noteFlags struct {
	title, content, contentFile, color string
	tags                               []string
	pinned                             bool
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Note title")
	cmd.Flags().StringVar(&f.content, "content", "", "Note content")
	cmd.Flags().StringVar(&f.contentFile, "content-file", "", "Read content from a file (- for stdin)")
	cmd.Flags().StringVar(&f.color, "color", "", "Accent color")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().BoolVar(&f.pinned, "pinned", false, "Pin the note")
}

func (f *noteFlags) apply(cmd *cobra.Command, n core.Note) (core.Note, error) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		n.Title = f.title
	}
	if flags.Changed("content") {
		n.Content = f.content
	}
	if f.contentFile != "" {
		content, err := readContent(cmd.InOrStdin(), f.contentFile)
		if err != nil {
			return n, err
		}
		n.Content = content
	}
	if flags.Changed("color") {
		n.AccentColor = f.color
	}
	if flags.Changed("tag") {
		n.Tags = splitTags(f.tags)
	}
	if flags.Changed("pinned") {
		n.IsPinned = f.pinned
	}
	return n, nil
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(data), nil
}

func newNoteCreateCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := f.apply(cmd, core.Note{})
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				saved, err := store.SaveNote(ctx, note)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", saved.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.MarkFlagRequired("title")
	return cmd
}

func newNoteEditCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit [note-id]",
		Short: "Change a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				note, err := requireNote(ctx, store, args[0])
				if err != nil {
					return err
				}
				if note, err = f.apply(cmd, note); err != nil {
					return err
				}
				saved, err := store.SaveNote(ctx, note)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", saved.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newNotePinCmd(a *app) *cobra.Command {
	var unpin bool
	cmd := &cobra.Command{
		Use:   "pin [note-id]",
		Short: "Pin a note to the top of listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				note, ok, err := store.SetNotePinned(ctx, args[0], !unpin)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("note not found: %s", args[0])
				}
				state := "pinned"
				if !note.IsPinned {
					state = "unpinned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note %s %s\n", note.ID, state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unpin, "unpin", false, "Unpin instead")
	return cmd
}

func newNoteDuplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate [note-id]",
		Short: "Copy a note under a fresh id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				clone, ok, err := store.DuplicateNote(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("note not found: %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note duplicated: %s (%s)\n", clone.ID, clone.Title)
				return nil
			})
		},
	}
}

func newNoteDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [note-id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				if _, err := requireNote(ctx, store, args[0]); err != nil {
					return err
				}
				if err := store.DeleteNote(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", args[0])
				return nil
			})
		},
	}
}

func newNoteAnalyzeCmd(a *app) *cobra.Command {
	var applyTags bool
	cmd := &cobra.Command{
		Use:   "analyze [note-id]",
		Short: "Summarize a note and suggest keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *core.Store) error {
				note, err := requireNote(ctx, store, args[0])
				if err != nil {
					return err
				}
				analysis, err := a.capabilities().Assistant.AnalyzeNote(ctx, note.Content)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Summary: %s\n", analysis.Summary)
				fmt.Fprintf(out, "Keywords: %s\n", formatTags(analysis.Keywords))

				if !applyTags || len(analysis.Keywords) == 0 {
					return nil
				}
				for _, k := range analysis.Keywords {
					if !slices.Contains(note.Tags, k) {
						note.Tags = append(note.Tags, k)
					}
				}
				if _, err := store.SaveNote(ctx, note); err != nil {
					return err
				}
				fmt.Fprintln(out, "Keywords added to tags.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&applyTags, "apply-tags", false, "Add the suggested keywords to the note tags")
	return cmd
}

func requireNote(ctx context.Context, store *core.Store, id string) (core.Note, error) {
	note, ok, err := store.GetNote(ctx, id)
	if err != nil {
		return core.Note{}, err
	}
	if !ok {
		return core.Note{}, fmt.Errorf("note not found: %s", id)
	}
	return note, nil
}

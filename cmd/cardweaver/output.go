package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/aretw0/cardweaver/pkg/core"
)

// columnWidth caps free-text columns in listings.
const columnWidth = 40

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// clip shortens s to the column width, counting East Asian wide runes as two
// cells.
func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, columnWidth, "…")
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ",")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printDecks(w io.Writer, decks []core.Deck) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCARDS\tMASTERED\tTAGS\tUPDATED")
	for _, d := range decks {
		mastered, total := core.DeckProgress(d)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			d.ID, clip(d.Name), total, mastered, formatTags(d.Tags), formatTime(d.UpdatedAt))
	}
	return tw.Flush()
}

func printDeck(w io.Writer, d core.Deck) error {
	mastered, total := core.DeckProgress(d)
	fmt.Fprintf(w, "%s (%s)\n", d.Name, d.ID)
	if d.Description != "" {
		fmt.Fprintf(w, "%s\n", d.Description)
	}
	fmt.Fprintf(w, "Tags: %s  Mastered: %d/%d  Updated: %s\n\n", formatTags(d.Tags), mastered, total, formatTime(d.UpdatedAt))

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tFRONT\tBACK")
	for _, fc := range d.Flashcards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", fc.ID, fc.Status, clip(fc.Title), clip(fc.Front), clip(fc.Back))
	}
	return tw.Flush()
}

func printNotes(w io.Writer, notes []core.Note) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPIN\tTITLE\tTAGS\tUPDATED")
	for _, n := range notes {
		pin := ""
		if n.IsPinned {
			pin = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, pin, clip(n.Title), formatTags(n.Tags), formatTime(n.UpdatedAt))
	}
	return tw.Flush()
}

func printNote(w io.Writer, n core.Note) {
	pinned := ""
	if n.IsPinned {
		pinned = " [pinned]"
	}
	fmt.Fprintf(w, "%s (%s)%s\n", n.Title, n.ID, pinned)
	fmt.Fprintf(w, "Tags: %s  Updated: %s\n\n", formatTags(n.Tags), formatTime(n.UpdatedAt))
	fmt.Fprintln(w, n.Content)
}

// splitTags accepts repeated and comma-separated --tag values.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

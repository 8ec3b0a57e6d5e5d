// Package cardweaver is the composition root of the cardweaver study tool.
//
// It connects the domain (decks, flashcards, notes and the quiz engine) with
// the storage adapters, the same way across the library and the CLI.
//
// Features:
//
//   - **Entity store**: decks own their flashcards; every read and write is
//     normalized; ids and timestamps are assigned by the store.
//   - **Pluggable storage**: JSON files (default, atomic writes, watchable),
//     SQLite/Postgres through gorm, or memory.
//   - **Quiz engine**: filtered, shuffled sessions with scoring, keyboard
//     control and cancellable speech and explanations.
//   - **Import/export**: JSON and YAML deck files, glob batch import.
//
// Usage:
//
//	store, err := cardweaver.New(ctx, ".cardweaver",
//		cardweaver.WithAutoInit(true),
//		cardweaver.WithLogger(logger),
//	)
//
//	deck, err := store.SaveDeck(ctx, core.Deck{Name: "Biology"})
package cardweaver

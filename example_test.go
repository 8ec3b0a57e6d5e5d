package cardweaver_test

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/aretw0/cardweaver"
	"github.com/aretw0/cardweaver/pkg/core"
	"github.com/aretw0/cardweaver/pkg/quiz"
)

// Example_basic demonstrates how to open a store, save a deck and read it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "cardweaver-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	store, err := cardweaver.New(ctx, tmpDir, cardweaver.WithAutoInit(true))
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	deck, err := store.SaveDeck(ctx, core.Deck{
		Name: "Capitals",
		Flashcards: []core.Flashcard{
			{Title: "France", Front: "Capital of France?", Back: "Paris"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	got, _, err := store.GetDeck(ctx, deck.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %d card(s), status %s\n", got.Name, len(got.Flashcards), got.Flashcards[0].Status)
	// Output:
	// Capitals: 1 card(s), status learning
}

// Example_quiz runs a two-card session where one answer is right.
func Example_quiz() {
	cards := []core.Flashcard{
		{ID: "a", Front: "2+2?", Back: "4", Status: core.StatusLearning},
		{ID: "b", Front: "3*3?", Back: "9", Status: core.StatusLearning},
	}
	engine := quiz.NewEngine(cards, quiz.WithRand(rand.New(rand.NewPCG(1, 2))))

	engine.Start()
	engine.RevealAnswer()
	engine.MarkCorrect()
	engine.Advance()
	engine.RevealAnswer()
	engine.MarkIncorrect()
	engine.Advance()

	res, _ := engine.Result()
	fmt.Printf("%d/%d %s\n", res.Score, res.Total, res.Tier.Message())
	// Output:
	// 1/2 Good job, keep practicing!
}

package game

import (
	"math/rand"
	"strings"
)

// wordPool is the static pool of secret words.
var wordPool = []string{
	"Lion", "Tiger", "Elephant", "Giraffe", "Bear", "Wolf",
	"Gorilla", "Chimpanzee", "Zebra", "Hippopotamus", "Crocodile", "Snake",
	"Shark", "Whale", "Dolphin", "Seal", "Walrus", "Rhinoceros",
	"Kangaroo", "Platypus", "Echidna", "Tasmanian devil", "Koala", "Ostrich",
	"Emu", "Cassowary", "Alligator", "Lizard", "Iguana", "Gecko",
}

// Words returns a copy of the word pool.
func Words() []string {
	words := make([]string, len(wordPool))
	copy(words, wordPool)
	return words
}

// PickWord selects a word uniformly from the pool.
func PickWord(rng *rand.Rand) string {
	return wordPool[rng.Intn(len(wordPool))]
}

// matchesWord compares a guess with the secret word ignoring case and surrounding space.
func matchesWord(guess, word string) bool {
	return word != "" && strings.EqualFold(strings.TrimSpace(guess), word)
}

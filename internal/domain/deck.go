package domain

import (
	"math/rand"
)

// ValidateCardCount checks a requested board size against a catalog.
func ValidateCardCount(cardCount int, catalog []Symbol) error {
	if cardCount%2 != 0 {
		return configErr("card count", ErrOddCardCount)
	}
	if cardCount < MinCards {
		return configErr("card count", ErrTooFewCards)
	}
	if err := validateCatalog(catalog); err != nil {
		return err
	}
	if cardCount/2 > len(catalog) {
		return configErr("card count", ErrTooManyPairs)
	}
	return nil
}

func validateCatalog(catalog []Symbol) error {
	seen := make(map[Symbol]struct{}, len(catalog))
	for _, s := range catalog {
		if _, dup := seen[s]; dup || s == "" {
			return configErr("symbols", ErrDuplicateSymbol)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// BuildDeck picks cardCount/2 distinct symbols from catalog and returns a shuffled
// board with two cards per symbol. Card ids are board positions.
func BuildDeck(cardCount int, catalog []Symbol, rng *rand.Rand) ([]Card, error) {
	if err := ValidateCardCount(cardCount, catalog); err != nil {
		return nil, err
	}

	pool := append([]Symbol(nil), catalog...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	deck := make([]Card, 0, cardCount)
	for _, s := range pool[:cardCount/2] {
		deck = append(deck, Card{Symbol: s}, Card{Symbol: s})
	}
	ShuffleDeck(deck, rng)
	for i := range deck {
		deck[i].ID = i
	}
	return deck, nil
}

// ShuffleDeck shuffles the deck in place.
func ShuffleDeck(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// internal/deck/deck.go
package deck

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/unoarena/server/internal/models"
)

// Size is the full deck size: per color one 0, two each of 1-9, two SKIP,
// two REVERSE, two +2 (25 x 4 colors), plus four WILD and four +4.
const Size = 108

// Generate builds the canonical 108-card set and shuffles it with rng.
func Generate(rng *rand.Rand) []*models.Card {
	cards := make([]*models.Card, 0, Size)

	newCard := func(color models.Color, value models.Value) *models.Card {
		return &models.Card{ID: uuid.NewString(), Color: color, Value: value}
	}

	for _, color := range models.StandardColors {
		cards = append(cards, newCard(color, models.ValueZero))
		for _, value := range models.NumberValues {
			cards = append(cards, newCard(color, value), newCard(color, value))
		}
		for _, value := range []models.Value{models.ValueSkip, models.ValueReverse, models.ValueDrawTwo} {
			cards = append(cards, newCard(color, value), newCard(color, value))
		}
	}

	for i := 0; i < 4; i++ {
		cards = append(cards, newCard(models.ColorWild, models.ValueWild))
		cards = append(cards, newCard(models.ColorWild, models.ValueWildDrawFour))
	}

	Shuffle(rng, cards)
	return cards
}

// Shuffle permutes cards in place (Fisher-Yates).
func Shuffle(rng *rand.Rand, cards []*models.Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

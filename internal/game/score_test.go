package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hand(cards ...Card) Hand { return Hand(cards) }

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name  string
		cards Hand
		want  int
	}{
		{"empty", hand(), 0},
		{"no aces", hand(NewCard(Seven, Hearts), NewCard(Eight, Clubs)), 15},
		{"face cards", hand(NewCard(King, Hearts), NewCard(Queen, Clubs)), 20},
		{"soft ace", hand(NewCard(Ace, Hearts), NewCard(Nine, Clubs)), 20},
		{"ace softened", hand(NewCard(Ace, Hearts), NewCard(Nine, Clubs), NewCard(Five, Spades)), 15},
		{"two aces", hand(NewCard(Ace, Hearts), NewCard(Ace, Clubs)), 12},
		{"three aces and nine", hand(NewCard(Ace, Hearts), NewCard(Ace, Clubs), NewCard(Ace, Spades), NewCard(Nine, Diamonds)), 12},
		{"four aces", hand(NewCard(Ace, Hearts), NewCard(Ace, Clubs), NewCard(Ace, Spades), NewCard(Ace, Diamonds)), 14},
		{"bust with ace", hand(NewCard(King, Hearts), NewCard(Queen, Clubs), NewCard(Ace, Spades), NewCard(Two, Spades)), 23},
		{"hard bust", hand(NewCard(King, Hearts), NewCard(Queen, Clubs), NewCard(Five, Spades)), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateScore(tt.cards))
			// повторный вызов не меняет результат
			assert.Equal(t, tt.want, CalculateScore(tt.cards))
		})
	}
}

func TestCalculateScore_DoesNotMutateCards(t *testing.T) {
	h := hand(NewCard(Ace, Hearts), NewCard(Ace, Clubs), NewCard(King, Spades))
	CalculateScore(h)
	for _, c := range h {
		if c.IsAce() {
			assert.Equal(t, 11, c.Value())
		}
	}
}

func TestCalculateScore_NoAcesIsPlainSum(t *testing.T) {
	for _, a := range Ranks {
		for _, b := range Ranks {
			if a == Ace || b == Ace {
				continue
			}
			h := hand(NewCard(a, Hearts), NewCard(b, Spades))
			assert.Equal(t, CardValues[a]+CardValues[b], CalculateScore(h))
		}
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack(hand(NewCard(Ace, Hearts), NewCard(King, Clubs))))
	assert.True(t, IsBlackjack(hand(NewCard(Ten, Hearts), NewCard(Ace, Clubs))))
	assert.False(t, IsBlackjack(hand(NewCard(Seven, Hearts), NewCard(Seven, Clubs), NewCard(Seven, Spades))))
	assert.False(t, IsBlackjack(hand(NewCard(Ten, Hearts), NewCard(Nine, Clubs))))
	assert.False(t, IsBlackjack(hand()))
}

func TestIsBust(t *testing.T) {
	assert.True(t, IsBust(hand(NewCard(King, Hearts), NewCard(Queen, Clubs), NewCard(Five, Spades))))
	assert.False(t, IsBust(hand(NewCard(King, Hearts), NewCard(Queen, Clubs), NewCard(Ace, Spades))))
	assert.False(t, IsBust(hand(NewCard(Nine, Hearts), NewCard(Seven, Clubs))))
	assert.False(t, IsBust(hand()))
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, Evaluation{}, Evaluate(nil))

	assert.Equal(t,
		Evaluation{Value: 21, Blackjack: true, Soft: true},
		Evaluate(hand(NewCard(Ace, Hearts), NewCard(Jack, Clubs))))

	assert.Equal(t,
		Evaluation{Value: 21},
		Evaluate(hand(NewCard(Seven, Hearts), NewCard(Seven, Clubs), NewCard(Seven, Spades))))

	assert.Equal(t,
		Evaluation{Value: 17, Soft: true},
		Evaluate(hand(NewCard(Ace, Hearts), NewCard(Six, Clubs))))

	assert.Equal(t,
		Evaluation{Value: 17},
		Evaluate(hand(NewCard(Ace, Hearts), NewCard(Six, Clubs), NewCard(King, Spades))))

	assert.Equal(t,
		Evaluation{Value: 26, Bust: true},
		Evaluate(hand(NewCard(King, Hearts), NewCard(Six, Clubs), NewCard(King, Spades))))
}

func TestHand_UpCardAndString(t *testing.T) {
	_, ok := hand().UpCard()
	assert.False(t, ok)

	h := hand(NewCard(Ace, Hearts), NewCard(Ten, Spades))
	up, ok := h.UpCard()
	assert.True(t, ok)
	assert.Equal(t, NewCard(Ace, Hearts), up)
	assert.Equal(t, "A♥ 10♠", h.String())
}

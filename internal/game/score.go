package game

import "strings"

const (
	BlackjackScore  = 21
	DealerStandsAt  = 17
	aceSoftening    = 10
	blackjackLength = 2
)

// CalculateScore sums a hand counting every ace as 11 and then softening
// aces to 1 one at a time while the total is over 21.
func CalculateScore(cards []Card) int {
	score, _ := scoreWithSoftAces(cards)
	return score
}

func scoreWithSoftAces(cards []Card) (int, int) {
	score := 0
	aces := 0

	for _, card := range cards {
		if card.IsAce() {
			aces++
			score += CardValues[Ace]
			continue
		}
		score += card.Value()
	}

	// Если перебор и есть тузы, считаем туз за 1
	for score > BlackjackScore && aces > 0 {
		score -= aceSoftening
		aces--
	}

	return score, aces
}

// IsBlackjack reports a natural: exactly two cards worth 21.
func IsBlackjack(cards []Card) bool {
	return len(cards) == blackjackLength && CalculateScore(cards) == BlackjackScore
}

func IsBust(cards []Card) bool {
	return CalculateScore(cards) > BlackjackScore
}

// IsSoft reports whether at least one ace is still counted as 11.
func IsSoft(cards []Card) bool {
	_, soft := scoreWithSoftAces(cards)
	return soft > 0
}

type Evaluation struct {
	Value     int
	Blackjack bool
	Bust      bool
	Soft      bool
}

func Evaluate(cards []Card) Evaluation {
	value, soft := scoreWithSoftAces(cards)
	return Evaluation{
		Value:     value,
		Blackjack: len(cards) == blackjackLength && value == BlackjackScore,
		Bust:      value > BlackjackScore,
		Soft:      soft > 0,
	}
}

// Hand is an ordered set of cards held by one party.
type Hand []Card

func (h Hand) Score() int { return CalculateScore(h) }

func (h Hand) IsBlackjack() bool { return IsBlackjack(h) }

func (h Hand) IsBust() bool { return IsBust(h) }

func (h Hand) Evaluate() Evaluation { return Evaluate(h) }

// UpCard is the first card of the hand, the one a dealer shows face up.
func (h Hand) UpCard() (Card, bool) {
	if len(h) == 0 {
		return Card{}, false
	}
	return h[0], true
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

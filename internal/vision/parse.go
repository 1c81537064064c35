package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"blackjack-helper/internal/game"
)

const Prompt = `Analyze this blackjack game image and identify all visible playing cards.

Please identify:
1. Player's cards (cards closest to the bottom of the image or clearly in the player's hand)
2. Dealer's cards (cards at the top or in the dealer's position)

For each card, specify the rank (A, 2-10, J, Q, K) and suit (hearts, diamonds, clubs, spades).

Respond in this exact JSON format:
{
  "playerCards": [{"rank": "A", "suit": "hearts"}, ...],
  "dealerCards": [{"rank": "K", "suit": "spades"}, ...],
  "confidence": 0.95
}

If you cannot clearly identify any cards, return empty arrays.`

var (
	ErrNoJSON           = errors.New("no JSON found in response")
	ErrBadJSON          = errors.New("failed to parse card classification response")
	ErrUnrecognizedCard = errors.New("unrecognized card")
)

// Classification is the validated answer of the model.
type Classification struct {
	Player     game.Hand
	Dealer     game.Hand
	Confidence float64
	Raw        string
}

func (c *Classification) Empty() bool {
	return len(c.Player) == 0 && len(c.Dealer) == 0
}

type rawCard struct {
	Rank json.RawMessage `json:"rank"`
	Suit string          `json:"suit"`
}

type rawReply struct {
	PlayerCards      []rawCard `json:"playerCards"`
	DealerCards      []rawCard `json:"dealerCards"`
	PlayerCardsSnake []rawCard `json:"player_cards"`
	DealerCardsSnake []rawCard `json:"dealer_cards"`
	Confidence       float64   `json:"confidence"`
}

// модель часто оборачивает JSON в markdown
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResponse extracts the JSON object from the model reply and validates
// every card in it. One unknown rank or suit rejects the whole reply.
func ParseResponse(content string) (*Classification, error) {
	match := jsonObject.FindString(content)
	if match == "" {
		return nil, ErrNoJSON
	}

	var reply rawReply
	if err := json.Unmarshal([]byte(match), &reply); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadJSON, err)
	}

	playerRaw := reply.PlayerCards
	if len(playerRaw) == 0 {
		playerRaw = reply.PlayerCardsSnake
	}
	dealerRaw := reply.DealerCards
	if len(dealerRaw) == 0 {
		dealerRaw = reply.DealerCardsSnake
	}

	player, err := toHand("player", playerRaw)
	if err != nil {
		return nil, err
	}
	dealer, err := toHand("dealer", dealerRaw)
	if err != nil {
		return nil, err
	}

	return &Classification{
		Player:     player,
		Dealer:     dealer,
		Confidence: clamp(reply.Confidence),
		Raw:        content,
	}, nil
}

func toHand(owner string, raw []rawCard) (game.Hand, error) {
	hand := make(game.Hand, 0, len(raw))
	for i, rc := range raw {
		card, err := game.ParseCard(rankToken(rc.Rank), rc.Suit)
		if err != nil {
			return nil, fmt.Errorf("%w: %s card %d: %w", ErrUnrecognizedCard, owner, i+1, err)
		}
		hand = append(hand, card)
	}
	return hand, nil
}

// rankToken accepts both "10" and 10 since models are not strict about it.
func rankToken(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRank = errors.New("unknown rank")
	ErrUnknownSuit = errors.New("unknown suit")
)

// Rank of a card. The zero value is not a valid rank.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

var rankNames = map[Rank]string{
	Ace: "A", Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
	Eight: "8", Nine: "9", Ten: "10", Jack: "J", Queen: "Q", King: "K",
}

// Очки карты при создании. Туз всегда 11, смягчение только в сумме руки.
var CardValues = map[Rank]int{
	Ace: 11, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
	Eight: 8, Nine: 9, Ten: 10, Jack: 10, Queen: 10, King: 10,
}

var rankTokens = map[string]Rank{
	"A": Ace, "ACE": Ace,
	"2": Two, "TWO": Two,
	"3": Three, "THREE": Three,
	"4": Four, "FOUR": Four,
	"5": Five, "FIVE": Five,
	"6": Six, "SIX": Six,
	"7": Seven, "SEVEN": Seven,
	"8": Eight, "EIGHT": Eight,
	"9": Nine, "NINE": Nine,
	"10": Ten, "T": Ten, "TEN": Ten,
	"J": Jack, "JACK": Jack,
	"Q": Queen, "QUEEN": Queen,
	"K": King, "KING": King,
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "?"
}

func (r Rank) Valid() bool {
	_, ok := rankNames[r]
	return ok
}

// ParseRank maps a classifier token such as "A", "10", "t" or "King" to a Rank.
func ParseRank(token string) (Rank, error) {
	r, ok := rankTokens[strings.ToUpper(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRank, token)
	}
	return r, nil
}

// Suit of a card. The zero value is not a valid suit.
type Suit uint8

const (
	Hearts Suit = iota + 1
	Diamonds
	Clubs
	Spades
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = map[Suit]string{
	Hearts:   "hearts",
	Diamonds: "diamonds",
	Clubs:    "clubs",
	Spades:   "spades",
}

var suitSymbols = map[Suit]string{
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Spades:   "♠",
}

var suitTokens = map[string]Suit{
	"hearts": Hearts, "heart": Hearts, "h": Hearts, "♥": Hearts, "♥️": Hearts,
	"diamonds": Diamonds, "diamond": Diamonds, "d": Diamonds, "♦": Diamonds, "♦️": Diamonds,
	"clubs": Clubs, "club": Clubs, "c": Clubs, "♣": Clubs, "♣️": Clubs,
	"spades": Spades, "spade": Spades, "s": Spades, "♠": Spades, "♠️": Spades,
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return "?"
}

func (s Suit) Valid() bool {
	_, ok := suitNames[s]
	return ok
}

// Symbol returns the suit glyph. Calling it on an invalid suit is a
// programming error and panics.
func (s Suit) Symbol() string {
	sym, ok := suitSymbols[s]
	if !ok {
		panic(fmt.Sprintf("game: invalid suit %d", uint8(s)))
	}
	return sym
}

// ParseSuit maps a classifier token such as "hearts", "Spade", "d" or "♣" to a Suit.
func ParseSuit(token string) (Suit, error) {
	s, ok := suitTokens[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSuit, token)
	}
	return s, nil
}

// Card is an immutable playing card. Its point value is fixed by NewCard.
type Card struct {
	rank  Rank
	suit  Suit
	value int
}

// NewCard panics on a rank or suit outside the defined constants.
// Untrusted input goes through ParseCard.
func NewCard(rank Rank, suit Suit) Card {
	if !rank.Valid() {
		panic(fmt.Sprintf("game: invalid rank %d", uint8(rank)))
	}
	if !suit.Valid() {
		panic(fmt.Sprintf("game: invalid suit %d", uint8(suit)))
	}
	return Card{rank: rank, suit: suit, value: CardValues[rank]}
}

// ParseCard validates a raw rank/suit pair as returned by the classifier.
func ParseCard(rank, suit string) (Card, error) {
	r, err := ParseRank(rank)
	if err != nil {
		return Card{}, err
	}
	s, err := ParseSuit(suit)
	if err != nil {
		return Card{}, err
	}
	return NewCard(r, s), nil
}

func (c Card) Rank() Rank { return c.rank }
func (c Card) Suit() Suit { return c.suit }
func (c Card) Value() int { return c.value }

func (c Card) IsAce() bool { return c.rank == Ace }

func (c Card) Valid() bool { return c.rank.Valid() && c.suit.Valid() }

func (c Card) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return Display(c)
}

// Display renders a card as rank plus suit glyph, e.g. "A♥" or "10♠".
func Display(c Card) string {
	return c.rank.String() + c.suit.Symbol()
}

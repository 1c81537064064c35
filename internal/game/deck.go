package game

import "math/rand"

const deckSize = 52

type Deck struct {
	cards   []Card
	shuffle func(n int, swap func(i, j int))
}

func NewDeck() *Deck {
	return NewDeckWithRand(nil)
}

// NewDeckWithRand builds a shuffled deck drawing randomness from r.
// A nil r uses the global source.
func NewDeckWithRand(r *rand.Rand) *Deck {
	d := &Deck{
		cards:   make([]Card, 0, deckSize),
		shuffle: rand.Shuffle,
	}
	if r != nil {
		d.shuffle = r.Shuffle
	}

	d.refill()
	return d
}

// NewStackedDeck deals cards in the given order and only then falls back
// to a shuffled deck. Used to replay a known shoe.
func NewStackedDeck(cards ...Card) *Deck {
	d := &Deck{
		cards:   make([]Card, 0, len(cards)),
		shuffle: rand.Shuffle,
	}
	d.cards = append(d.cards, cards...)
	return d
}

func (d *Deck) Shuffle() {
	d.shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw takes the top card. An empty deck is replaced by a fresh shuffled one.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.refill()
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

func (d *Deck) refill() {
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Package strategy holds the simplified basic-strategy table used to advise
// a player hand against the dealer up-card.
package strategy

import (
	"blackjack-helper/internal/game"
)

type Action string

const (
	ActionBust      Action = "bust"
	ActionBlackjack Action = "blackjack"
	ActionWaiting   Action = "waiting"
	ActionStand     Action = "stand"
	ActionHit       Action = "hit"
	ActionUndecided Action = "undecided"
)

type Recommendation struct {
	Action Action
	Text   string
}

func (r Recommendation) String() string { return r.Text }

var (
	Bust            = Recommendation{ActionBust, "You have bust. Dealer wins."}
	Blackjack       = Recommendation{ActionBlackjack, "Blackjack! You win (unless dealer also has blackjack)."}
	WaitingDealer   = Recommendation{ActionWaiting, "Waiting for dealer card..."}
	StandStrong     = Recommendation{ActionStand, "STAND - Your hand is strong enough."}
	HitSafe         = Recommendation{ActionHit, "HIT - You cannot bust, safe to take another card."}
	StandDealerWeak = Recommendation{ActionStand, "STAND - Dealer has a weak card, let them bust."}
	HitWeak         = Recommendation{ActionHit, "HIT - Your hand is weak."}
	HitDealerStrong = Recommendation{ActionHit, "HIT - Dealer has a strong card."}
	Undecided       = Recommendation{ActionUndecided, "Consider your options carefully."}
)

// Situation is everything the table looks at.
type Situation struct {
	PlayerValue  int
	DealerUpCard *game.Card
	HasBlackjack bool
	PlayerBust   bool
}

func (s Situation) dealerValue() int {
	if s.DealerUpCard == nil {
		return 0
	}
	return s.DealerUpCard.Value()
}

type Rule struct {
	Name   string
	Match  func(Situation) bool
	Advice Recommendation
}

// rules are checked in order and the first match wins. Rules 4 and later
// assume a dealer up-card is present, which rule 3 guarantees.
var rules = []Rule{
	{"bust", func(s Situation) bool { return s.PlayerBust }, Bust},
	{"blackjack", func(s Situation) bool { return s.HasBlackjack }, Blackjack},
	{"no dealer card", func(s Situation) bool { return s.DealerUpCard == nil }, WaitingDealer},
	{"17 or more", func(s Situation) bool { return s.PlayerValue >= 17 }, StandStrong},
	{"11 or less", func(s Situation) bool { return s.PlayerValue <= 11 }, HitSafe},
	{"12 vs 4-6", func(s Situation) bool {
		return s.PlayerValue == 12 && between(s.dealerValue(), 4, 6)
	}, StandDealerWeak},
	{"12", func(s Situation) bool { return s.PlayerValue == 12 }, HitWeak},
	{"13-16 vs 2-6", func(s Situation) bool {
		return between(s.PlayerValue, 13, 16) && between(s.dealerValue(), 2, 6)
	}, StandDealerWeak},
	{"13-16", func(s Situation) bool { return between(s.PlayerValue, 13, 16) }, HitDealerStrong},
}

func between(v, lo, hi int) bool { return v >= lo && v <= hi }

// Rules returns a copy of the decision table in precedence order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Decide walks the rule table for s.
func Decide(s Situation) Recommendation {
	for _, r := range rules {
		if r.Match(s) {
			return r.Advice
		}
	}
	return Undecided
}

// Recommend advises a player holding playerValue. dealerUpCard may be nil
// while the dealer has not shown a card yet.
func Recommend(playerValue int, dealerUpCard *game.Card, hasBlackjack, playerBust bool) Recommendation {
	return Decide(Situation{
		PlayerValue:  playerValue,
		DealerUpCard: dealerUpCard,
		HasBlackjack: hasBlackjack,
		PlayerBust:   playerBust,
	})
}

// Advise evaluates the player hand and uses the first dealer card as the up-card.
func Advise(player, dealer game.Hand) Recommendation {
	eval := player.Evaluate()

	var up *game.Card
	if c, ok := dealer.UpCard(); ok {
		up = &c
	}
	return Recommend(eval.Value, up, eval.Blackjack, eval.Bust)
}

package httpapi

import (
	"blackjack-helper/internal/analysis"
	"blackjack-helper/internal/game"
)

type AnalyzeFrameRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type CardDTO struct {
	Rank    string `json:"rank"`
	Suit    string `json:"suit"`
	Value   int    `json:"value"`
	Display string `json:"display"`
}

type GameStateDTO struct {
	PlayerCards     []CardDTO `json:"player_cards"`
	DealerCards     []CardDTO `json:"dealer_cards"`
	PlayerTotal     *int      `json:"player_total"`
	DealerTotal     *int      `json:"dealer_total"`
	PlayerBlackjack bool      `json:"player_blackjack"`
	PlayerBust      bool      `json:"player_bust"`
	Recommendation  *string   `json:"recommendation"`
	Action          *string   `json:"action"`
	Confidence      float64   `json:"confidence"`
	AnalysisID      string    `json:"analysis_id"`
}

type AnalyzeFrameResponse struct {
	Success   bool          `json:"success"`
	GameState *GameStateDTO `json:"game_state,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func cardsDTO(hand game.Hand) []CardDTO {
	out := make([]CardDTO, len(hand))
	for i, c := range hand {
		out[i] = CardDTO{
			Rank:    c.Rank().String(),
			Suit:    c.Suit().String(),
			Value:   c.Value(),
			Display: game.Display(c),
		}
	}
	return out
}

// FromResult maps an analysis to the response shape. Totals are null for
// empty hands.
func FromResult(res *analysis.Result) *GameStateDTO {
	dto := &GameStateDTO{
		PlayerCards:     cardsDTO(res.Player),
		DealerCards:     cardsDTO(res.Dealer),
		PlayerBlackjack: res.PlayerEval.Blackjack,
		PlayerBust:      res.PlayerEval.Bust,
		Confidence:      res.Confidence,
		AnalysisID:      res.ID.String(),
	}

	if len(res.Player) > 0 {
		v := res.PlayerEval.Value
		dto.PlayerTotal = &v
	}
	if len(res.Dealer) > 0 {
		v := res.DealerEval.Value
		dto.DealerTotal = &v
	}
	if res.Advice != nil {
		text := res.Advice.Text
		action := string(res.Advice.Action)
		dto.Recommendation = &text
		dto.Action = &action
	}
	return dto
}

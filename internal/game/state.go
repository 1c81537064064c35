package game

import (
	"sync"
)

type Result int

const (
	ResultNone Result = iota
	ResultPlayerWin
	ResultDealerWin
	ResultPush
	ResultBlackjack
)

func (r Result) String() string {
	switch r {
	case ResultPlayerWin:
		return "player_win"
	case ResultDealerWin:
		return "dealer_win"
	case ResultPush:
		return "push"
	case ResultBlackjack:
		return "blackjack"
	}
	return "none"
}

// State is a practice round: one player hand against the dealer.
type State struct {
	Player   Hand
	Dealer   Hand
	Deck     *Deck
	IsActive bool
}

func NewState() *State {
	return NewStateWithDeck(NewDeck())
}

func NewStateWithDeck(d *Deck) *State {
	s := &State{
		Deck:     d,
		Player:   make(Hand, 0, 10),
		Dealer:   make(Hand, 0, 10),
		IsActive: true,
	}

	s.Player = append(s.Player, s.Deck.Draw(), s.Deck.Draw())
	s.Dealer = append(s.Dealer, s.Deck.Draw(), s.Deck.Draw())

	// натуральный блэкджек у кого-то из двоих сразу закрывает раунд
	if s.Player.IsBlackjack() || s.Dealer.IsBlackjack() {
		s.IsActive = false
	}

	return s
}

// Hit deals one card to the player. A bust ends the round.
func (s *State) Hit() (Card, bool) {
	if !s.IsActive {
		return Card{}, false
	}

	card := s.Deck.Draw()
	s.Player = append(s.Player, card)

	if s.Player.IsBust() {
		s.IsActive = false
	}
	return card, true
}

// Stand ends the player's turn and lets the dealer draw to 17.
func (s *State) Stand() Result {
	if s.IsActive {
		s.IsActive = false
		s.DealerPlay()
	}
	return s.Result()
}

func (s *State) DealerPlay() {
	if s.Player.IsBust() {
		return
	}

	for s.Dealer.Score() < DealerStandsAt {
		s.Dealer = append(s.Dealer, s.Deck.Draw())
	}
}

// Result is ResultNone while the round is still in play.
func (s *State) Result() Result {
	if s.IsActive {
		return ResultNone
	}

	playerBJ := s.Player.IsBlackjack()
	dealerBJ := s.Dealer.IsBlackjack()

	switch {
	case playerBJ && dealerBJ:
		return ResultPush
	case playerBJ:
		return ResultBlackjack
	case dealerBJ:
		return ResultDealerWin
	case s.Player.IsBust():
		return ResultDealerWin
	case s.Dealer.IsBust():
		return ResultPlayerWin
	}

	playerScore := s.Player.Score()
	dealerScore := s.Dealer.Score()

	if playerScore > dealerScore {
		return ResultPlayerWin
	} else if playerScore < dealerScore {
		return ResultDealerWin
	}
	return ResultPush
}

// DealerUpCard is the only dealer card visible while the round is active.
func (s *State) DealerUpCard() (Card, bool) {
	return s.Dealer.UpCard()
}

// Manager хранит тренировочные раунды по chatID
type Manager struct {
	games map[int64]*State
	locks map[int64]*sync.Mutex
	mu    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		games: make(map[int64]*State),
		locks: make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) Get(chatID int64) *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.games[chatID]
}

func (m *Manager) Set(chatID int64, state *State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[chatID] = state
}

func (m *Manager) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, chatID)
}

// With runs fn while holding the chat's lock. fn receives the current round,
// or nil if there is none, and may call Set and Delete for the same chat.
func (m *Manager) With(chatID int64, fn func(*State)) {
	l := m.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	fn(m.Get(chatID))
}

func (m *Manager) chatLock(chatID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[chatID] = l
	}
	return l
}

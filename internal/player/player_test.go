package player

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"blackjack-helper/internal/analysis"
	"blackjack-helper/internal/database"
	"blackjack-helper/internal/game"
	"blackjack-helper/internal/strategy"
)

type RepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo *SQLiteRepository
}

func (s *RepositorySuite) SetupTest() {
	db, err := database.New(filepath.Join(s.T().TempDir(), "test.db"))
	require.NoError(s.T(), err)
	s.db = db
	s.repo = NewRepository(db.DB)
}

func (s *RepositorySuite) TearDownTest() {
	s.db.Close()
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) TestGetOrCreate_NewPlayer() {
	p, err := s.repo.GetOrCreate(42)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int64(42), p.ChatID)
	assert.False(s.T(), p.HasAPIKey())
	assert.Zero(s.T(), p.Analyses)
}

func (s *RepositorySuite) TestSetAPIKey() {
	_, err := s.repo.GetOrCreate(7)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.repo.SetAPIKey(7, "sk-test-1234"))
	got, err := s.repo.GetOrCreate(7)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "sk-test-1234", got.APIKey)

	require.NoError(s.T(), s.repo.SetAPIKey(7, ""))
	got, err = s.repo.GetOrCreate(7)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.HasAPIKey())
}

func (s *RepositorySuite) TestCountersDoNotTouchKey() {
	_, err := s.repo.GetOrCreate(8)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.SetAPIKey(8, "sk-keep-5555"))

	require.NoError(s.T(), s.repo.IncrementPracticeRounds(8))
	require.NoError(s.T(), s.repo.RecordAnalysis(8, &analysis.Result{ID: uuid.New(), CreatedAt: time.Now()}))
	require.NoError(s.T(), s.repo.SetAPIKey(8, ""))
	require.NoError(s.T(), s.repo.IncrementPracticeRounds(8))

	got, err := s.repo.GetOrCreate(8)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.HasAPIKey())
	assert.Equal(s.T(), 1, got.Analyses)
	assert.Equal(s.T(), 2, got.PracticeRounds)
}

func (s *RepositorySuite) TestCounters_Concurrent() {
	_, err := s.repo.GetOrCreate(9)
	require.NoError(s.T(), err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- s.repo.IncrementPracticeRounds(9)
		}()
		go func() {
			defer wg.Done()
			errs <- s.repo.RecordAnalysis(9, &analysis.Result{ID: uuid.New(), CreatedAt: time.Now()})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(s.T(), err)
	}

	got, err := s.repo.GetOrCreate(9)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), n, got.Analyses)
	assert.Equal(s.T(), n, got.PracticeRounds)
}

func (s *RepositorySuite) TestHistory_NewestFirst() {
	_, err := s.repo.GetOrCreate(1)
	require.NoError(s.T(), err)

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		advice := strategy.HitSafe
		res := &analysis.Result{
			ID:         uuid.New(),
			Player:     game.Hand{game.NewCard(game.Five, game.Hearts), game.NewCard(game.Rank(i+2), game.Clubs)},
			Dealer:     game.Hand{game.NewCard(game.Ten, game.Spades)},
			Advice:     &advice,
			Confidence: 0.5,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		res.PlayerEval = res.Player.Evaluate()
		res.DealerEval = res.Dealer.Evaluate()
		require.NoError(s.T(), s.repo.RecordAnalysis(1, res))
	}

	records, err := s.repo.History(1, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 2)

	assert.Equal(s.T(), "5♥ 4♣", records[0].PlayerCards)
	assert.Equal(s.T(), 9, records[0].PlayerTotal)
	assert.Equal(s.T(), "10♠", records[0].DealerCards)
	assert.Equal(s.T(), 10, records[0].DealerTotal)
	assert.Equal(s.T(), "hit", records[0].Action)
	assert.Equal(s.T(), strategy.HitSafe.Text, records[0].Recommendation)
	assert.True(s.T(), records[0].CreatedAt.After(records[1].CreatedAt))

	empty, err := s.repo.History(99, 5)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), empty)
}

func (s *RepositorySuite) TestRecordAnalysis_WithoutAdvice() {
	_, err := s.repo.GetOrCreate(2)
	require.NoError(s.T(), err)

	res := &analysis.Result{ID: uuid.New(), CreatedAt: time.Now()}
	require.NoError(s.T(), s.repo.RecordAnalysis(2, res))

	records, err := s.repo.History(2, 5)
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
	assert.Empty(s.T(), records[0].Action)
	assert.Empty(s.T(), records[0].PlayerCards)
}

func TestPlayer_MaskedKey(t *testing.T) {
	assert.Equal(t, "****", (&Player{APIKey: "abc"}).MaskedKey())
	assert.Equal(t, "…wxyz", (&Player{APIKey: "sk-abcdwxyz"}).MaskedKey())
}

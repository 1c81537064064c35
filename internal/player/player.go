package player

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blackjack-helper/internal/analysis"
)

type Player struct {
	ChatID         int64
	APIKey         string
	Analyses       int
	PracticeRounds int
}

func (p *Player) HasAPIKey() bool {
	return p.APIKey != ""
}

// MaskedKey shows only the tail of the key.
func (p *Player) MaskedKey() string {
	if len(p.APIKey) <= 4 {
		return "****"
	}
	return "…" + p.APIKey[len(p.APIKey)-4:]
}

// Record is one stored analysis as shown in /history.
type Record struct {
	ID             string
	PlayerCards    string
	DealerCards    string
	PlayerTotal    int
	DealerTotal    int
	Action         string
	Recommendation string
	Confidence     float64
	CreatedAt      time.Time
}

// Repository updates single columns in place so concurrent handlers for
// the same chat never overwrite each other's changes.
type Repository interface {
	GetOrCreate(chatID int64) (*Player, error)
	SetAPIKey(chatID int64, key string) error
	IncrementPracticeRounds(chatID int64) error
	// RecordAnalysis stores the analysis and bumps the analyses counter.
	RecordAnalysis(chatID int64, res *analysis.Result) error
	History(chatID int64, limit int) ([]Record, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetOrCreate(chatID int64) (*Player, error) {
	player := &Player{ChatID: chatID}

	err := r.db.QueryRow(`
		SELECT api_key, analyses, practice_rounds
		FROM players WHERE chat_id = ?
	`, chatID).Scan(&player.APIKey, &player.Analyses, &player.PracticeRounds)

	if errors.Is(err, sql.ErrNoRows) {
		_, err = r.db.Exec(`INSERT INTO players (chat_id) VALUES (?)`, chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

// SetAPIKey stores key for the chat. An empty key clears it.
func (r *SQLiteRepository) SetAPIKey(chatID int64, key string) error {
	_, err := r.db.Exec(`
		UPDATE players SET api_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE chat_id = ?
	`, key, chatID)

	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) IncrementPracticeRounds(chatID int64) error {
	_, err := r.db.Exec(`
		UPDATE players SET practice_rounds = practice_rounds + 1, updated_at = CURRENT_TIMESTAMP
		WHERE chat_id = ?
	`, chatID)

	if err != nil {
		return fmt.Errorf("failed to count practice round: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecordAnalysis(chatID int64, res *analysis.Result) error {
	var action, text string
	if res.Advice != nil {
		action = string(res.Advice.Action)
		text = res.Advice.Text
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analyses (
			id, chat_id, player_cards, dealer_cards, player_total, dealer_total,
			action, recommendation, confidence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.ID.String(), chatID, res.Player.String(), res.Dealer.String(),
		res.PlayerEval.Value, res.DealerEval.Value,
		action, text, res.Confidence, res.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE players SET analyses = analyses + 1, updated_at = CURRENT_TIMESTAMP
		WHERE chat_id = ?
	`, chatID)
	if err != nil {
		return fmt.Errorf("failed to count analysis: %w", err)
	}

	return tx.Commit()
}

// History returns the newest analyses first.
func (r *SQLiteRepository) History(chatID int64, limit int) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT id, player_cards, dealer_cards, player_total, dealer_total,
			action, recommendation, confidence, created_at
		FROM analyses
		WHERE chat_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PlayerCards, &rec.DealerCards,
			&rec.PlayerTotal, &rec.DealerTotal, &rec.Action, &rec.Recommendation,
			&rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

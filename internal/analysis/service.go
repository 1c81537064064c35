// Package analysis turns a table photo into evaluated hands and advice.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blackjack-helper/internal/game"
	"blackjack-helper/internal/metrics"
	"blackjack-helper/internal/strategy"
	"blackjack-helper/internal/vision"
)

const DefaultMaxImageBytes = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image data")
	ErrImageTooLarge = errors.New("image is too large")
)

// Classifier reads the cards off a photo.
type Classifier interface {
	Classify(ctx context.Context, apiKey string, image []byte) (*vision.Classification, error)
}

type Request struct {
	Image  []byte
	APIKey string
}

type Result struct {
	ID         uuid.UUID
	Player     game.Hand
	Dealer     game.Hand
	PlayerEval game.Evaluation
	DealerEval game.Evaluation
	// Advice is nil unless both hands have cards.
	Advice     *strategy.Recommendation
	Confidence float64
	Raw        string
	CreatedAt  time.Time
}

func (r *Result) NoCards() bool {
	return len(r.Player) == 0 && len(r.Dealer) == 0
}

type Service struct {
	classifier    Classifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
	maxImageBytes int
	now           func() time.Time
}

type Option func(*Service)

func WithMaxImageBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(classifier Classifier, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		classifier:    classifier,
		metrics:       m,
		logger:        logger,
		maxImageBytes: DefaultMaxImageBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze validates the photo, asks the classifier for cards and evaluates them.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := s.validateImage(req.Image); err != nil {
		s.metrics.IncrementAnalysis("invalid_image")
		return nil, err
	}

	start := time.Now()
	cls, err := s.classifier.Classify(ctx, req.APIKey, req.Image)
	s.metrics.ObserveClassify(start)
	if err != nil {
		s.metrics.IncrementAnalysis("error")
		s.logger.ErrorContext(ctx, "card classification failed",
			"image_bytes", len(req.Image),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	res := s.Evaluate(cls.Player, cls.Dealer)
	res.Confidence = cls.Confidence
	res.Raw = cls.Raw

	if res.NoCards() {
		s.metrics.IncrementAnalysis("no_cards")
	} else {
		s.metrics.IncrementAnalysis("ok")
	}
	if res.Advice != nil {
		s.metrics.IncrementRecommendation(string(res.Advice.Action))
	}

	s.logger.InfoContext(ctx, "photo analyzed",
		"analysis_id", res.ID,
		"player", res.Player.String(),
		"dealer", res.Dealer.String(),
		"player_total", res.PlayerEval.Value,
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Evaluate scores both hands. It does no I/O.
func (s *Service) Evaluate(player, dealer game.Hand) *Result {
	res := &Result{
		ID:         uuid.New(),
		Player:     player,
		Dealer:     dealer,
		PlayerEval: player.Evaluate(),
		DealerEval: dealer.Evaluate(),
		CreatedAt:  s.now(),
	}

	if len(player) > 0 && len(dealer) > 0 {
		advice := strategy.Advise(player, dealer)
		res.Advice = &advice
	}
	return res
}

func (s *Service) validateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	if len(data) > s.maxImageBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(data), s.maxImageBytes)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return nil
}

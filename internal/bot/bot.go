package bot

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"blackjack-helper/internal/config"
	"blackjack-helper/internal/metrics"
	"blackjack-helper/internal/player"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of the Telegram client the handlers use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *slog.Logger
}

func New(cfg *config.Config, repo player.Repository, analyzer Analyzer, m *metrics.Metrics, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:     api,
		handler: NewHandler(api, cfg, repo, analyzer, m, logger, http.DefaultClient),
		logger:  logger,
	}, nil
}

// Run polls for updates until ctx is cancelled and returns once every
// started handler has finished.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, &wg, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, wg *sync.WaitGroup, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handler.HandleCallback(ctx, update.CallbackQuery)
		}()
	case update.Message != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handler.HandleMessage(ctx, update.Message)
		}()
	}
}

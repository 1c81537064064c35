package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"blackjack-helper/internal/analysis"
	"blackjack-helper/internal/config"
	"blackjack-helper/internal/game"
	"blackjack-helper/internal/metrics"
	"blackjack-helper/internal/player"
	"blackjack-helper/internal/strategy"
	"blackjack-helper/internal/vision"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Analyzer turns a photo into evaluated hands.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type Handler struct {
	bot      API
	cfg      *config.Config
	players  player.Repository
	analyzer Analyzer
	games    *game.Manager
	prompts  *keyPrompts
	metrics  *metrics.Metrics
	logger   *slog.Logger
	client   *http.Client
	deal     func() *game.State
}

func NewHandler(bot API, cfg *config.Config, repo player.Repository, analyzer Analyzer, m *metrics.Metrics, logger *slog.Logger, client *http.Client) *Handler {
	return &Handler{
		bot:      bot,
		cfg:      cfg,
		players:  repo,
		analyzer: analyzer,
		games:    game.NewManager(),
		prompts:  newKeyPrompts(),
		metrics:  m,
		logger:   logger,
		client:   client,
		deal:     game.NewState,
	}
}

// keyPrompts помнит чаты, от которых ждём API ключ следующим сообщением
type keyPrompts struct {
	mu    sync.Mutex
	chats map[int64]struct{}
}

func newKeyPrompts() *keyPrompts {
	return &keyPrompts{chats: make(map[int64]struct{})}
}

func (k *keyPrompts) Set(chatID int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.chats[chatID] = struct{}{}
}

// Take reports whether chatID was waiting and clears the flag.
func (k *keyPrompts) Take(chatID int64) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.chats[chatID]
	delete(k.chats, chatID)
	return ok
}

// ============== HELPERS ==============

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Warn("failed to answer callback", "callback_id", id, "error", err)
	}
}

func (h *Handler) getPlayer(chatID int64) (*player.Player, error) {
	return h.players.GetOrCreate(chatID)
}

// ============== FORMATTING ==============

func formatHand(label string, hand game.Hand) string {
	if len(hand) == 0 {
		return fmt.Sprintf("%s: —", label)
	}

	eval := hand.Evaluate()
	var note string
	switch {
	case eval.Blackjack:
		note = " BLACKJACK!"
	case eval.Bust:
		note = " 💥 bust"
	case eval.Soft:
		note = " soft"
	}
	return fmt.Sprintf("%s: %s (%d%s)", label, hand, eval.Value, note)
}

func formatAnalysis(res *analysis.Result) string {
	var sb strings.Builder
	sb.WriteString(formatHand("🎴 You", res.Player))
	sb.WriteString("\n")
	sb.WriteString(formatHand("🃏 Dealer", res.Dealer))
	sb.WriteString(fmt.Sprintf("\n🎯 Confidence: %.0f%%", res.Confidence*100))

	if res.Advice != nil {
		sb.WriteString("\n\n💡 ")
		sb.WriteString(res.Advice.Text)
	}
	return sb.String()
}

func formatPractice(g *game.State) string {
	up, _ := g.DealerUpCard()
	eval := g.Player.Evaluate()
	advice := strategy.Recommend(eval.Value, &up, eval.Blackjack, eval.Bust)

	return fmt.Sprintf("%s\n🃏 Dealer: %s ?\n\n💡 %s",
		formatHand("🎴 You", g.Player), up, advice.Text)
}

func formatRoundEnd(g *game.State, result game.Result) string {
	var text string
	switch result {
	case game.ResultBlackjack:
		text = "🎰 BLACKJACK! You win!"
	case game.ResultPlayerWin:
		text = "🎉 You win!"
	case game.ResultDealerWin:
		text = "😔 Dealer wins!"
	case game.ResultPush:
		text = "🤝 Push!"
	}

	return fmt.Sprintf("%s\n%s\n\n%s",
		formatHand("🎴 You", g.Player), formatHand("🃏 Dealer", g.Dealer), text)
}

func formatHistory(records []player.Record) string {
	if len(records) == 0 {
		return "📜 No analyses yet. Send me a photo of the table!"
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent analyses:\n")
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("\n%d. %s — You %s (%d) vs %s (%d)",
			i+1, r.CreatedAt.Format("Jan 2 15:04"), r.PlayerCards, r.PlayerTotal,
			r.DealerCards, r.DealerTotal))
		if r.Recommendation != "" {
			sb.WriteString("\n   💡 " + r.Recommendation)
		}
	}
	return sb.String()
}

// ============== COMMANDS ==============

func (h *Handler) HandleStart(chatID int64) {
	p, err := h.getPlayer(chatID)
	if err != nil {
		h.send(chatID, "❌ Error. Please try again later.")
		return
	}

	keyLine := "🔑 API key: not set, use /key"
	if p.HasAPIKey() {
		keyLine = "🔑 API key: " + p.MaskedKey()
	}

	h.send(chatID,
		"🎰 Blackjack Helper\n\n"+
			"Send me a photo of a blackjack table and I'll read the cards and suggest a move.\n\n"+
			keyLine+"\n\n"+
			"/key <key> — set your OpenAI API key\n"+
			"/clearkey — forget your key\n"+
			"/history — recent analyses\n"+
			"/deal — practice hand\n"+
			"/help — how it works")
}

func (h *Handler) HandleHelp(chatID int64) {
	h.send(chatID,
		"📖 How it works:\n\n"+
			"📸 Photograph the table so the dealer's cards are at the top and yours at the bottom.\n\n"+
			"📊 Values:\n"+
			"• 2-10 — face value\n"+
			"• J, Q, K — 10\n"+
			"• A — 11 or 1\n\n"+
			"💡 Advice uses a simplified basic strategy:\n"+
			"• 17+ — stand\n"+
			"• 11 or less — hit\n"+
			"• 12 — stand against 4-6, otherwise hit\n"+
			"• 13-16 — stand against 2-6, otherwise hit")
}

func (h *Handler) HandleKey(chatID int64, msgID int, args []string) {
	if len(args) == 0 {
		h.prompts.Set(chatID)
		h.send(chatID, "🔑 Send your OpenAI API key in the next message.")
		return
	}
	h.storeKey(chatID, msgID, args[0])
}

func (h *Handler) storeKey(chatID int64, msgID int, key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		h.send(chatID, "❌ Please enter a valid API key.")
		return
	}

	p, err := h.getPlayer(chatID)
	if err != nil {
		h.send(chatID, "❌ Error")
		return
	}

	p.APIKey = key
	if err := h.players.SetAPIKey(chatID, key); err != nil {
		h.logger.Error("failed to save api key", "chat_id", chatID, "error", err)
		h.send(chatID, "❌ Could not save the key. Try again later.")
		return
	}

	// ключ не должен висеть в истории чата
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		h.logger.Warn("failed to delete key message", "chat_id", chatID, "error", err)
	}

	h.send(chatID, "✅ API key saved ("+p.MaskedKey()+").")
}

func (h *Handler) HandleClearKey(chatID int64) {
	if _, err := h.getPlayer(chatID); err != nil {
		h.send(chatID, "❌ Error")
		return
	}

	if err := h.players.SetAPIKey(chatID, ""); err != nil {
		h.logger.Error("failed to clear api key", "chat_id", chatID, "error", err)
		h.send(chatID, "❌ Could not remove the key. Try again later.")
		return
	}
	h.send(chatID, "🗑 API key removed.")
}

func (h *Handler) HandleHistory(chatID int64) {
	if _, err := h.getPlayer(chatID); err != nil {
		h.send(chatID, "❌ Error")
		return
	}

	records, err := h.players.History(chatID, h.cfg.HistoryLimit)
	if err != nil {
		h.logger.Error("failed to load history", "chat_id", chatID, "error", err)
		h.send(chatID, "❌ Error")
		return
	}

	h.send(chatID, formatHistory(records))
}

// ============== PHOTO ANALYSIS ==============

func (h *Handler) HandlePhoto(ctx context.Context, chatID int64, fileID string) {
	p, err := h.getPlayer(chatID)
	if err != nil {
		h.send(chatID, "❌ Error. Please try again later.")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.cfg.AnalyzeTimeout)
	defer cancel()

	image, err := h.download(ctx, fileID)
	if err != nil {
		h.logger.Error("failed to download photo", "chat_id", chatID, "file_id", fileID, "error", err)
		h.send(chatID, "❌ Could not download the photo. Please try again.")
		return
	}

	h.send(chatID, "🔍 Analyzing cards...")

	res, err := h.analyzer.Analyze(ctx, analysis.Request{Image: image, APIKey: p.APIKey})
	if err != nil {
		h.send(chatID, analysisErrorText(err))
		return
	}

	if err := h.players.RecordAnalysis(chatID, res); err != nil {
		h.logger.Error("failed to record analysis", "chat_id", chatID, "analysis_id", res.ID, "error", err)
	}

	if res.NoCards() {
		h.send(chatID, "🤷 No cards detected. Please try again with a clearer photo.")
		return
	}

	h.sendWithKeyboard(chatID, formatAnalysis(res), AnalysisKeyboard())
}

func analysisErrorText(err error) string {
	switch {
	case errors.Is(err, vision.ErrNoAPIKey):
		return "🔑 No API key set. Use /key <your OpenAI key> first."
	case errors.Is(err, analysis.ErrImageTooLarge):
		return "❌ The photo is too large."
	case errors.Is(err, analysis.ErrInvalidImage):
		return "❌ That doesn't look like an image."
	case errors.Is(err, vision.ErrNoJSON),
		errors.Is(err, vision.ErrBadJSON),
		errors.Is(err, vision.ErrUnrecognizedCard):
		return "❌ Could not read the cards. Please try another photo."
	case errors.Is(err, context.DeadlineExceeded):
		return "⌛ Analysis took too long. Please try again."
	}
	return "❌ Analysis failed. Please try again."
}

func (h *Handler) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch file: status %d", resp.StatusCode)
	}

	// на байт больше лимита, чтобы анализ сам отклонил слишком большой файл
	return io.ReadAll(io.LimitReader(resp.Body, int64(h.cfg.MaxImageBytes)+1))
}

// ============== PRACTICE ==============

func (h *Handler) HandleDeal(chatID int64) {
	h.games.With(chatID, func(*game.State) {
		g := h.deal()
		h.games.Set(chatID, g)

		if !g.IsActive {
			h.finishRound(chatID, g)
			return
		}

		h.sendWithKeyboard(chatID, formatPractice(g), PracticeKeyboard())
	})
}

func (h *Handler) handleHit(chatID int64, g *game.State) {
	g.Hit()

	if !g.IsActive {
		h.finishRound(chatID, g)
		return
	}

	h.sendWithKeyboard(chatID, formatPractice(g), PracticeKeyboard())
}

func (h *Handler) handleStand(chatID int64, g *game.State) {
	g.Stand()
	h.finishRound(chatID, g)
}

func (h *Handler) finishRound(chatID int64, g *game.State) {
	result := g.Result()
	h.games.Delete(chatID)
	h.metrics.IncrementPracticeRound(result.String())

	if err := h.players.IncrementPracticeRounds(chatID); err != nil {
		h.logger.Error("failed to count practice round", "chat_id", chatID, "error", err)
	}

	h.sendWithKeyboard(chatID, formatRoundEnd(g, result), EndRoundKeyboard())
}

// ============== CALLBACKS ==============

func (h *Handler) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		h.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case CallbackDeal:
		h.answerCallback(callback.ID, "")
		h.HandleDeal(chatID)
		return
	case CallbackHistory:
		h.answerCallback(callback.ID, "")
		h.HandleHistory(chatID)
		return
	}

	// нажатия в одном чате обрабатываются по очереди
	h.games.With(chatID, func(g *game.State) {
		if g == nil || !g.IsActive {
			h.answerCallback(callback.ID, "No active hand")
			return
		}

		switch callback.Data {
		case CallbackHit:
			h.handleHit(chatID, g)
		case CallbackStand:
			h.handleStand(chatID, g)
		}

		h.answerCallback(callback.ID, "")
	})
}

// ============== MESSAGES ==============

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if len(msg.Photo) > 0 {
		// последний размер самый крупный
		h.HandlePhoto(ctx, chatID, msg.Photo[len(msg.Photo)-1].FileID)
		return
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		h.HandlePhoto(ctx, chatID, msg.Document.FileID)
		return
	}

	parts := strings.Fields(msg.Text)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if !strings.HasPrefix(cmd, "/") {
		if h.prompts.Take(chatID) {
			h.storeKey(chatID, msg.MessageID, parts[0])
			return
		}
		h.send(chatID, "📸 Send me a photo of the table, or /help.")
		return
	}

	// /cmd@botname
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		h.HandleStart(chatID)
	case "/help":
		h.HandleHelp(chatID)
	case "/key":
		h.HandleKey(chatID, msg.MessageID, args)
	case "/clearkey":
		h.HandleClearKey(chatID)
	case "/history":
		h.HandleHistory(chatID)
	case "/deal":
		h.HandleDeal(chatID)
	}
}

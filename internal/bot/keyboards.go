package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CallbackHit     = "hit"
	CallbackStand   = "stand"
	CallbackDeal    = "deal"
	CallbackHistory = "history"
)

// PracticeKeyboard is shown while a practice round is in play.
func PracticeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👊 Hit", CallbackHit),
			tgbotapi.NewInlineKeyboardButtonData("✋ Stand", CallbackStand),
		),
	)
}

func EndRoundKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Deal again", CallbackDeal),
		),
	)
}

// AnalysisKeyboard follows an analysed photo.
func AnalysisKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 History", CallbackHistory),
			tgbotapi.NewInlineKeyboardButtonData("🃏 Practice", CallbackDeal),
		),
	)
}

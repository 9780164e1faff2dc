package gateway

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labeeb-ai/labeeb/internal/interpreter"
	"github.com/rs/zerolog"
)

// TelegramGateway runs incoming chat messages through the command
// pipeline and replies with the per-step summary.
type TelegramGateway struct {
	Bot       *tgbotapi.BotAPI
	Processor *interpreter.Processor
	Logger    zerolog.Logger
}

func NewTelegramGateway(token string, processor *interpreter.Processor, logger zerolog.Logger) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("account", bot.Self.UserName).Msg("telegram gateway authorized")

	return &TelegramGateway{
		Bot:       bot,
		Processor: processor,
		Logger:    logger,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		tg.Logger.Info().Str("from", update.Message.From.UserName).Str("text", update.Message.Text).Msg("incoming command")

		result, err := tg.Processor.Run(context.Background(), update.Message.Text)
		var response string
		if err != nil {
			tg.Logger.Error().Err(err).Msg("command failed")
			response = fmt.Sprintf("Error processing command: %v", err)
		} else if result.Summary != "" {
			response = result.Summary
		} else {
			response = result.Response
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

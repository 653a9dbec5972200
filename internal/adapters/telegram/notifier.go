package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"herald/pkg/errors"
	"herald/pkg/logger"
)

// Telegram rejects messages longer than 4096 characters, so long
// digests are split on line boundaries.
const maxMessageLength = 4096

// Notifier delivers the digest to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// NewNotifier creates a Telegram notifier for a single chat.
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		log:    logger.Get().With("component", "telegram_notifier", "chat_id", chatID),
	}, nil
}

// Name identifies the delivery channel in logs and errors.
func (n *Notifier) Name() string { return "telegram" }

// Deliver sends the digest body to the configured chat, chunked to the
// Telegram message size limit. The subject is folded into the first
// chunk; Telegram has no subject concept.
func (n *Notifier) Deliver(ctx context.Context, subject, body string) error {
	text := "*" + subject + "*\n\n" + body

	for _, chunk := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true

		if _, err := n.bot.Send(msg); err != nil {
			return errors.Wrap(err, "send telegram message")
		}
	}

	n.log.Info("Digest delivered to telegram")
	return nil
}

// splitMessage cuts text into chunks of at most limit characters,
// preferring newline boundaries.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if text[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// Package telegram sends weather advisories to a Telegram chat.
//
// Messages use MarkdownV2, so every piece of dynamic text goes through
// escapeMarkdownV2 before it is placed in the template.
package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/whetherai/internal/advice"
	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
)

// sender is the part of tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot    sender
	chatID int64
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return &Client{bot: bot, chatID: chatIDInt}, nil
}

// SendReport sends the conditions, probabilities and advice of a report.
// A failed send is returned as is; the caller decides whether to try again.
func (c *Client) SendReport(report *models.Report) error {
	msg := tgbotapi.NewMessage(c.chatID, formatReport(report))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send report %s: %w", report.ID, err)
	}
	return nil
}

// formatReport formats a report into a Telegram message
func formatReport(r *models.Report) string {
	a := advice.For(inference.Prediction{RainChance: r.RainChance, Sunlight: r.Sunlight})

	var b strings.Builder
	fmt.Fprintf(&b, "🌾 *Weather advice for %s*\n", escapeMarkdownV2(r.Location))
	fmt.Fprintf(&b, "📅 %s\n\n", escapeMarkdownV2(r.CreatedAt.Format("2006-01-02 15:04")))

	fmt.Fprintf(&b, "🌡 Temperature: %s\n", escapeMarkdownV2(fmt.Sprintf("%.1f°C", r.Temperature)))
	fmt.Fprintf(&b, "💧 Humidity: %s\n", escapeMarkdownV2(fmt.Sprintf("%d%%", r.Humidity)))
	fmt.Fprintf(&b, "🌥 Sky: %s\n\n", escapeMarkdownV2(r.Description))

	fmt.Fprintf(&b, "🌧 Rain chance: *%s*\n", escapeMarkdownV2(fmt.Sprintf("%.0f%%", r.RainChance*100)))
	fmt.Fprintf(&b, "🌞 Sunlight: *%s*\n\n", escapeMarkdownV2(fmt.Sprintf("%.0f%%", r.Sunlight*100)))

	for _, o := range []advice.Outlook{a.Rain, a.Sun} {
		fmt.Fprintf(&b, "*%s*\n", escapeMarkdownV2(o.Headline))
		for _, tip := range o.Tips {
			fmt.Fprintf(&b, "%s\n", escapeMarkdownV2("- "+tip))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_%s_", escapeMarkdownV2(a.Note))
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

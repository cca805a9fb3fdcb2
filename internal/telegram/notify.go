package telegram

import (
	"context"
	"fmt"
	"log"

	"family-meal-planner/internal/settings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatSender is the slice of the Telegram API the notifier needs.
// Satisfied by *tgbotapi.BotAPI.
type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes API-triggered messages to the chat the bot last heard
// from. Each message kind honors its own auto-send setting, so the REST
// side produces the same chat traffic the bot commands would.
type Notifier struct {
	api      chatSender
	settings *settings.Repository
}

// NewNotifier creates a Notifier on top of an authorized bot API.
func NewNotifier(api *tgbotapi.BotAPI, settingsRepo *settings.Repository) *Notifier {
	return &Notifier{api: api, settings: settingsRepo}
}

// NotifyPlan pushes a plan message when auto_send_plan is enabled.
func (n *Notifier) NotifyPlan(ctx context.Context, text string) error {
	tg, err := n.settings.GetTelegram(ctx)
	if err != nil {
		return err
	}
	if !tg.AutoSendPlan {
		return nil
	}
	return n.push(ctx, text)
}

// NotifyShop pushes a shopping-list message when auto_send_shop is enabled.
func (n *Notifier) NotifyShop(ctx context.Context, text string) error {
	tg, err := n.settings.GetTelegram(ctx)
	if err != nil {
		return err
	}
	if !tg.AutoSendShop {
		return nil
	}
	return n.push(ctx, text)
}

func (n *Notifier) push(ctx context.Context, text string) error {
	chatID, err := n.settings.GetLastChatID(ctx)
	if err != nil {
		return err
	}
	if chatID == 0 {
		log.Printf("telegram notify skipped: no chat seen yet")
		return nil
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

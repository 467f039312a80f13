package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService posts domain events to a single operator chat.
type TelegramService struct {
	bot    domain.TelegramSender
	chatID int64
}

func NewTelegramService(bot domain.TelegramSender, chatID int64) *TelegramService {
	return &TelegramService{
		bot:    bot,
		chatID: chatID,
	}
}

func (s *TelegramService) Name() string { return "telegram" }

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return s.bot.Send(msg)
}

// Deliver formats ev and sends it to the configured chat.
func (s *TelegramService) Deliver(ctx context.Context, ev *events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text, err := FormatEvent(ev)
	if err != nil {
		return err
	}
	if _, err := s.SendMessage(s.chatID, text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatEvent renders a human readable chat message for ev.
func FormatEvent(ev *events.Event) (string, error) {
	switch ev.Type {
	case events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected:
		var p events.BookingEventPayload
		if err := ev.Decode(&p); err != nil {
			return "", fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		title := map[string]string{
			events.EventBookingCreated:  "New booking request",
			events.EventBookingApproved: "Booking approved",
			events.EventBookingRejected: "Booking rejected",
		}[ev.Type]
		return fmt.Sprintf("%s #%d\nItem: %s (#%d)\nBooker: %s (#%d)\nFrom: %s\nTo: %s\nStatus: %s",
			title, p.BookingID,
			p.ItemName, p.ItemID,
			p.BookerName, p.BookerID,
			p.Start.Local().Format(models.TimeLayout),
			p.End.Local().Format(models.TimeLayout),
			p.Status,
		), nil
	case events.EventCommentAdded:
		var p events.CommentEventPayload
		if err := ev.Decode(&p); err != nil {
			return "", fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		return fmt.Sprintf("New comment on item #%d by %s:\n%s", p.ItemID, p.AuthorName, p.Text), nil
	default:
		return "", fmt.Errorf("unsupported event type: %s", ev.Type)
	}
}

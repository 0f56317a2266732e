// Package notify tells administrators about paid bookings over Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type Notifier interface {
	BookingPaid(ctx context.Context, booking *model.Booking, payment *model.Payment) error
}

// Nop drops notifications.
type Nop struct{}

func (Nop) BookingPaid(context.Context, *model.Booking, *model.Payment) error { return nil }

type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	loc    *time.Location
	logger *zap.Logger
}

// NewTelegramNotifier builds a send-only bot client; it never polls for updates.
func NewTelegramNotifier(token string, chatID int64, loc *time.Location, logger *zap.Logger, opts ...bot.Option) (*TelegramNotifier, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramNotifier{bot: b, chatID: chatID, loc: loc, logger: logger}, nil
}

func (n *TelegramNotifier) BookingPaid(ctx context.Context, booking *model.Booking, payment *model.Payment) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      PaidBookingMessage(booking, payment, n.loc),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("Admin notified", zap.String("booking_code", booking.BookingCode))
	return nil
}

// PaidBookingMessage renders the admin notification for a paid booking.
func PaidBookingMessage(booking *model.Booking, payment *model.Payment, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString("💳 <b>Booking paid</b>\n\n")
	fmt.Fprintf(&sb, "Code: <code>%s</code>\n", booking.BookingCode)
	fmt.Fprintf(&sb, "Customer: %s\n", html.EscapeString(booking.CustomerName))

	if s := booking.Schedule; s != nil {
		if s.Route != nil {
			fmt.Fprintf(&sb, "Route: %s (%s)\n", html.EscapeString(s.Route.Name()), s.Route.DurationFormatted())
		}
		if s.Boat != nil {
			fmt.Fprintf(&sb, "Boat: %s\n", html.EscapeString(s.Boat.Name))
		}
		fmt.Fprintf(&sb, "Departure: %s (%s)\n",
			FormatDateTime(s.DepartureTime, loc),
			FormatTimeRange(s.DepartureTime, s.ArrivalTime, loc))
	}

	if s := booking.Schedule; s != nil {
		fmt.Fprintf(&sb, "Passengers: %d × %s\n", booking.PassengerCount, FormatPriceShort(s.Price))
	} else {
		fmt.Fprintf(&sb, "Passengers: %d\n", booking.PassengerCount)
	}
	fmt.Fprintf(&sb, "Amount: %s\n", FormatPrice(booking.TotalAmount))
	if payment != nil {
		fmt.Fprintf(&sb, "Transaction: <code>%s</code>\n", payment.TransactionID)
	}
	fmt.Fprintf(&sb, "Booking: %s\n", BookingStatusDisplay(booking.BookingStatus))
	fmt.Fprintf(&sb, "Payment: %s", PaymentStatusDisplay(booking.PaymentStatus))

	return sb.String()
}

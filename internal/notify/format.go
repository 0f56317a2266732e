package notify

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
)

// FormatPrice renders an amount with two decimals.
func FormatPrice(amount model.Money) string {
	return amount.String()
}

// FormatPriceShort drops the decimals when they are zero.
func FormatPriceShort(amount model.Money) string {
	if amount%100 == 0 {
		return fmt.Sprintf("%d", int64(amount)/100)
	}
	return amount.String()
}

// FormatDateTime renders t in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// FormatTimeRange renders a departure/arrival pair.
func FormatTimeRange(start, end time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s-%s", start.In(loc).Format("15:04"), end.In(loc).Format("15:04"))
}

type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

// PaymentStatusDisplay returns emoji and label for a payment status.
func PaymentStatusDisplay(status model.PaymentStatus) StatusDisplay {
	displays := map[model.PaymentStatus]StatusDisplay{
		model.PaymentStatusPending:  {"🟡", "Pending"},
		model.PaymentStatusPaid:     {"🟢", "Paid"},
		model.PaymentStatusFailed:   {"🔴", "Failed"},
		model.PaymentStatusRefunded: {"⚪️", "Refunded"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Unknown"}
}

// BookingStatusDisplay returns emoji and label for a booking status.
func BookingStatusDisplay(status model.BookingStatus) StatusDisplay {
	displays := map[model.BookingStatus]StatusDisplay{
		model.BookingStatusConfirmed: {"✅", "Confirmed"},
		model.BookingStatusCancelled: {"❌", "Cancelled"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Unknown"}
}

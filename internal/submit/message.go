package submit

import (
	"fmt"
	"math"

	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MessageFormat is the sentence shown under the form
const MessageFormat = "Aktuálna odhadovaná hodnota bytu je: %s €."

// FormatMessage renders the prediction with the printer's number formatting
func FormatMessage(p *message.Printer, prediction float64) string {
	return fmt.Sprintf(MessageFormat, formatNumber(p, prediction))
}

func formatNumber(p *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

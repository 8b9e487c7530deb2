package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const waitlistSubject = "You're on the Orbit waitlist"

var _ intake.Notifier = (*WaitlistConfirmer)(nil)

// WaitlistConfirmer emails a confirmation after a record is stored.
type WaitlistConfirmer struct {
	email  EmailSender
	logger *logging.Logger
}

func NewWaitlistConfirmer(email EmailSender, logger *logging.Logger) *WaitlistConfirmer {
	if logger == nil {
		logger = logging.Default()
	}
	return &WaitlistConfirmer{email: email, logger: logger}
}

// WaitlistConfirmed sends the confirmation email for rec.
func (c *WaitlistConfirmer) WaitlistConfirmed(ctx context.Context, rec *intake.Record) error {
	if c.email == nil || rec == nil {
		return nil
	}
	msg := EmailMessage{
		To:      rec.Email,
		ToName:  rec.FullName,
		Subject: waitlistSubject,
		Body:    confirmationText(rec),
		HTML:    confirmationHTML(rec),
	}
	if err := c.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: waitlist confirmation: %w", err)
	}
	c.logger.Debug("waitlist confirmation sent", "record_id", rec.ID)
	return nil
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func confirmationText(rec *intake.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(rec.FullName))
	b.WriteString("Thanks for joining the Orbit waitlist. We'll be in touch as soon as a spot opens up.\n")
	if rec.PainPoints.Len() > 0 {
		b.WriteString("\nYou told us you're dealing with:\n")
		for _, p := range rec.PainPoints.Strings() {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	b.WriteString("\nThe Orbit team\n")
	return b.String()
}

func confirmationHTML(rec *intake.Record) string {
	var points string
	if rec.PainPoints.Len() > 0 {
		var items strings.Builder
		for _, p := range rec.PainPoints.Strings() {
			fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(p))
		}
		points = fmt.Sprintf(`<p>You told us you're dealing with:</p><ul>%s</ul>`, items.String())
	}
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #1f2937;">
  <p>Hi %s,</p>
  <p>Thanks for joining the Orbit waitlist. We'll be in touch as soon as a spot opens up.</p>
  %s
  <p>The Orbit team</p>
</body>
</html>`, html.EscapeString(firstName(rec.FullName)), points)
}

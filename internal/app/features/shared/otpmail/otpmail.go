// Package otpmail issues one-time codes and emails them.
package otpmail

import (
	"context"
	"fmt"
	"time"

	"github.com/crisisline/crisishub/internal/app/store/otp"
	"github.com/crisisline/crisishub/internal/app/system/mailer"
	"go.uber.org/zap"
)

// DefaultSiteName appears in email subjects.
const DefaultSiteName = "CrisisHub"

// Sender issues codes through an otp.Store and delivers them by mail.
type Sender struct {
	Codes    *otp.Store
	Mail     mailer.Sender
	SiteName string
	Log      *zap.Logger
}

func New(codes *otp.Store, mail mailer.Sender, logger *zap.Logger) *Sender {
	return &Sender{Codes: codes, Mail: mail, SiteName: DefaultSiteName, Log: logger}
}

// Send issues a fresh code for email and purpose and mails it. Errors from
// the code store (otp.ErrTooManyResends) are returned unwrapped.
func (s *Sender) Send(ctx context.Context, email string, purpose otp.Purpose, isResend bool) error {
	code, err := s.Codes.Issue(ctx, email, purpose, isResend)
	if err != nil {
		return err
	}

	kind := mailer.OTPVerifyEmail
	if purpose == otp.PurposePasswordReset {
		kind = mailer.OTPResetPassword
	}
	msg := mailer.BuildOTPEmail(email, mailer.OTPEmailData{
		SiteName:  s.SiteName,
		Kind:      kind,
		Code:      code,
		ExpiresIn: FormatExpiry(s.Codes.Expiry()),
	})
	if err := s.Mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s code: %w", purpose, err)
	}

	s.Log.Info("one-time code sent",
		zap.String("email", email),
		zap.String("purpose", string(purpose)),
		zap.Bool("resend", isResend),
	)
	return nil
}

// FormatExpiry renders d as "1 minute", "5 minutes" or "2 hours".
func FormatExpiry(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// OTPKind selects the wording of a one-time code email.
type OTPKind int

const (
	OTPVerifyEmail OTPKind = iota
	OTPResetPassword
)

// OTPEmailData holds data for one-time code email templates.
type OTPEmailData struct {
	SiteName  string
	Kind      OTPKind
	Code      string
	ExpiresIn string // e.g., "5 minutes"
}

type otpCopy struct {
	Subject string
	Title   string
	Message string
	Accent  string
}

func (d OTPEmailData) copy() otpCopy {
	if d.Kind == OTPResetPassword {
		return otpCopy{
			Subject: "Password Reset Verification",
			Title:   "Password Reset",
			Message: "Please use the verification code below to reset your password.",
			Accent:  "#004aad",
		}
	}
	return otpCopy{
		Subject: "Verify Your Email Address",
		Title:   "Email Verification",
		Message: "Please use the verification code below to verify your email address.",
		Accent:  "#22c55e",
	}
}

// BuildOTPEmail creates a one-time code email with both HTML and text bodies.
func BuildOTPEmail(to string, data OTPEmailData) Email {
	c := data.copy()
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("%s: %s", data.SiteName, c.Subject),
		TextBody: buildOTPText(data, c),
		HTMLBody: buildOTPHTML(data, c),
	}
}

func buildOTPText(data OTPEmailData, c otpCopy) string {
	var buf bytes.Buffer
	buf.WriteString(c.Message + "\n\n")
	buf.WriteString(fmt.Sprintf("Your code is: %s\n\n", data.Code))
	buf.WriteString(fmt.Sprintf("This code expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you did not request this, please ignore this email.\n")
	return buf.String()
}

var otpHTML = template.Must(template.New("otp").Parse(otpHTMLTemplate))

func buildOTPHTML(data OTPEmailData, c otpCopy) string {
	var buf bytes.Buffer
	_ = otpHTML.Execute(&buf, map[string]string{
		"SiteName":  data.SiteName,
		"Code":      data.Code,
		"ExpiresIn": data.ExpiresIn,
		"Title":     c.Title,
		"Message":   c.Message,
		"Accent":    c.Accent,
	})
	return buf.String()
}

const otpHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Arial, sans-serif; background-color: #f4f6f8;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f6f8;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 10px; box-shadow: 0 2px 12px rgba(0, 0, 0, 0.08);">
          <!-- Header -->
          <tr>
            <td style="padding: 20px 0; text-align: center; background-color: {{.Accent}}; border-radius: 10px 10px 0 0;">
              <h2 style="margin: 0; font-size: 20px; color: #ffffff;">{{.Title}}</h2>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 30px; color: #333333;">
              <p style="margin: 0 0 24px; font-size: 15px; color: #555555;">{{.Message}}</p>

              <!-- Code Box -->
              <div style="text-align: center; margin: 30px 0;">
                <span style="display: inline-block; background-color: {{.Accent}}; color: #ffffff; font-size: 28px; font-weight: bold; letter-spacing: 6px; padding: 14px 40px; border-radius: 8px;">{{.Code}}</span>
              </div>

              <p style="margin: 0; font-size: 14px; color: #555555; text-align: center;">
                This code will expire in <strong>{{.ExpiresIn}}</strong>.
              </p>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 16px 32px; background-color: #f9fafc; border-radius: 0 0 10px 10px;">
              <p style="margin: 0; font-size: 12px; color: #999999; text-align: center;">
                If you did not request this, please ignore this email. {{.SiteName}}
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

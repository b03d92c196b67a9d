package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const (
	SubjectVerify = "Verify Your SOMA Account"
	SubjectReset  = "Reset Your SOMA Password"
)

type otpData struct {
	Code        string
	Minutes     int
	FrontendURL string
}

type resetData struct {
	Link        string
	Minutes     int
	FrontendURL string
}

var (
	otpHTML = htmltemplate.Must(htmltemplate.New("otp").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="UTF-8" /><title>Verify Your SOMA Account</title></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <div style="text-align: center;">
        <img src="{{.FrontendURL}}/public/somapng.png" alt="Soma" style="width: 100px; height: auto;" />
        <h1 style="font-size: 18px; color: rgb(2, 8, 23);">Soma</h1>
      </div>
      <h2 style="color: rgb(2, 8, 23);">Verify Your Account</h2>
      <p>Welcome to SOMA! To complete your account verification, use the following one-time password:</p>
      <div style="text-align: center; margin: 30px 0;">
        <div style="background-color: rgb(2, 8, 23); color: white; padding: 20px; border-radius: 12px; display: inline-block;">
          <h3 style="margin: 0; font-size: 24px; letter-spacing: 8px;">{{.Code}}</h3>
        </div>
      </div>
      <p>This code expires in {{.Minutes}} minutes.</p>
      <p>If you didn't request this verification, please ignore this email.</p>
      <p>Best regards,<br>The SOMA Team</p>
    </div>
  </body>
</html>`))

	otpText = texttemplate.Must(texttemplate.New("otp").Parse(`Verify your SOMA account

Your one-time password is {{.Code}}.
It expires in {{.Minutes}} minutes.

If you didn't request this verification, please ignore this email.

The SOMA Team
`))

	resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="UTF-8" /><title>Reset Your SOMA Password</title></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <div style="text-align: center;">
        <img src="{{.FrontendURL}}/public/somapng.png" alt="Soma" style="width: 100px; height: auto;" />
      </div>
      <h2 style="color: rgb(2, 8, 23);">Reset Your Password</h2>
      <p>We received a request to reset your SOMA password. Click the button below to choose a new one:</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="{{.Link}}" style="background-color: rgb(2, 8, 23); color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">Reset Password</a>
      </div>
      <p>This link expires in {{.Minutes}} minutes. If you didn't request a reset, you can ignore this email.</p>
      <p>Best regards,<br>The SOMA Team</p>
    </div>
  </body>
</html>`))

	resetText = texttemplate.Must(texttemplate.New("reset").Parse(`Reset your SOMA password

Open the link below to choose a new password:
{{.Link}}

The link expires in {{.Minutes}} minutes. If you didn't request a reset, ignore this email.

The SOMA Team
`))
)

func OTPEmail(to, code string, ttl time.Duration, frontendURL string) (Message, error) {
	data := otpData{Code: code, Minutes: int(ttl.Minutes()), FrontendURL: frontendURL}
	return render(to, SubjectVerify, otpHTML, otpText, data)
}

func PasswordResetEmail(to, link string, ttl time.Duration, frontendURL string) (Message, error) {
	data := resetData{Link: link, Minutes: int(ttl.Minutes()), FrontendURL: frontendURL}
	return render(to, SubjectReset, resetHTML, resetText, data)
}

func render(to, subject string, h *htmltemplate.Template, t *texttemplate.Template, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := h.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", h.Name(), err)
	}
	if err := t.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", t.Name(), err)
	}
	return Message{To: to, Subject: subject, HTML: html.String(), Text: text.String()}, nil
}

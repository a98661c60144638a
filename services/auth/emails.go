package auth

import (
	"fmt"
	"html"

	"bhutantours/services/notification"
)

func loginCodeEmail(to, code string) notification.Email {
	return notification.Email{
		To:      to,
		Subject: "Your Bhutan Tours sign-in code",
		HTML: fmt.Sprintf(`<p>Your sign-in code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">%s</p>
<p>It expires in %d minutes. If you did not try to sign in, you can ignore this email.</p>`,
			code, int(OTPTTL.Minutes())),
		Text: fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, int(OTPTTL.Minutes())),
	}
}

func resetEmail(to, resetURL string) notification.Email {
	return notification.Email{
		To:      to,
		Subject: "Reset your Bhutan Tours password",
		HTML: fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset password</a></p>
<p>The link expires in 1 hour. If you did not request this, you can ignore this email.</p>`,
			html.EscapeString(resetURL)),
		Text: fmt.Sprintf("Reset your password: %s\nThe link expires in 1 hour.", resetURL),
	}
}

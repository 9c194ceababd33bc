package main

import (
	"github.com/tgoo/authadm/pkg/transport"
)

// friendlyMessages maps known auth service error texts to wording that
// helps a console user act on them.
var friendlyMessages = map[string]string{
	"Invalid credentials":             "Email or password incorrect",
	"Account blocked":                 "Your account has been blocked. Contact an administrator",
	"Account pending approval":        "Your account is waiting for administrator approval",
	"Platform is inactive":            "The platform is temporarily unavailable",
	"Invalid platform":                "Platform not found. Check the configured platform code",
	"Email already registered":        "This email is already in use on the platform",
	"Token not provided":              "You need to sign in first",
	"Invalid or expired token":        "Session expired. Sign in again",
	"Email and password are required": "Fill in both email and password",
}

// friendlyError extracts the server-provided message from err and swaps in
// a friendlier wording for the messages we recognize.
func friendlyError(err error) string {
	msg := transport.ErrorMessage(err)

	if friendly, ok := friendlyMessages[msg]; ok {
		return friendly
	}

	return msg
}

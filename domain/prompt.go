package domain

// AuthPrompt is a known line of ASF output asking the operator for something.
type AuthPrompt struct {
	Kind     string
	Marker   string
	Guidance string
}

// AuthPrompts is matched in order, the first marker found in a line wins.
// Markers must not contain double quotes, they are embedded in shell patterns.
var AuthPrompts = []AuthPrompt{
	{
		Kind:     "two-factor-code",
		Marker:   "2FA code",
		Guidance: "ASF needs a Steam Guard mobile authenticator code. Enter it in the web UI console (input <bot> 2FA <code>) or import the .maFile with asfctl import-2fa.",
	},
	{
		Kind:     "email-code",
		Marker:   "auth code that was sent on your e-mail",
		Guidance: "ASF needs the Steam Guard code sent by e-mail. Enter it in the web UI console (input <bot> SteamGuard <code>).",
	},
	{
		Kind:     "mobile-confirmation",
		Marker:   "confirm the login in the Steam mobile app",
		Guidance: "Approve the login in the Steam mobile app on your phone, ASF continues on its own.",
	},
	{
		Kind:     "two-factor-mismatch",
		Marker:   "TwoFactorCodeMismatch",
		Guidance: "The 2FA code was rejected. Check the time on this server and the shared secret of the imported .maFile.",
	},
	{
		Kind:     "invalid-password",
		Marker:   "InvalidPassword",
		Guidance: "Steam rejected the password. Fix SteamPassword in the bot config and restart with asfctl restart.",
	},
	{
		Kind:     "rate-limit",
		Marker:   "RateLimitExceeded",
		Guidance: "Steam is rate limiting logins from this IP. Stop the bot and wait at least 30 minutes before retrying.",
	},
}

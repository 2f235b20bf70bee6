package service

import (
	"fmt"
	"html"
)

// replyEmail renders the notification sent to a ticket owner after an
// operator reply. Returns the mail subject and HTML body.
func replyEmail(ownerName, ticketSubject, reply string) (string, string) {
	subject := fmt.Sprintf("Re: %s", ticketSubject)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Hello %s,</h2>
			<p>Our support team has replied to your request <strong>%s</strong>:</p>
			<blockquote>%s</blockquote>
			<p>You can view the full conversation from your account at any time.</p>
			<p>— Support Desk</p>
		</body>
		</html>
	`,
		html.EscapeString(ownerName),
		html.EscapeString(ticketSubject),
		html.EscapeString(reply),
	)
	return subject, body
}

package renderer

import "github.com/etnz/signalist/date"

// RenderDigestEmail renders the body of the daily news email.
func RenderDigestEmail(day date.Date, summary string) string {
	data := struct{ Date, Summary string }{day.Long(), summary}
	return renderTemplate("digest_email", "digest_email.md", map[string]string{"email_footer": "email_footer.md"}, data)
}

// RenderWelcomeEmail renders the body of the welcome email.
func RenderWelcomeEmail(name, intro string) string {
	data := struct{ Name, Intro string }{name, intro}
	return renderTemplate("welcome_email", "welcome_email.md", map[string]string{"email_footer": "email_footer.md"}, data)
}

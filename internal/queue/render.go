package queue

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"github.com/iliyamo/practice-booking/internal/mail"
)

var textBody = template.Must(template.New("text").Funcs(template.FuncMap{"join": strings.Join}).Parse(
	`New contact request

Name:      {{.Name}}
Email:     {{if .Email}}{{.Email}}{{else}}-{{end}}
Phone:     {{.Phone}}
Languages: {{join .Languages ", "}}
Received:  {{.SubmittedAt}}

{{.Message}}
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap{"join": strings.Join}).Parse(
	`<h2>New contact request</h2>
<table>
<tr><td>Name</td><td>{{.Name}}</td></tr>
<tr><td>Email</td><td>{{if .Email}}<a href="mailto:{{.Email}}">{{.Email}}</a>{{else}}-{{end}}</td></tr>
<tr><td>Phone</td><td>{{.Phone}}</td></tr>
<tr><td>Languages</td><td>{{join .Languages ", "}}</td></tr>
<tr><td>Received</td><td>{{.SubmittedAt}}</td></tr>
</table>
<p style="white-space: pre-wrap">{{.Message}}</p>
`))

// RenderContactEmail builds the notification sent to the practice inbox.
// Replies go to the client when they left an email address.
func RenderContactEmail(ev ContactSubmittedEvent, from, to string) (mail.Message, error) {
	var txt, html bytes.Buffer
	if err := textBody.Execute(&txt, ev); err != nil {
		return mail.Message{}, err
	}
	if err := htmlBody.Execute(&html, ev); err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		From:    from,
		To:      []string{to},
		ReplyTo: ev.Email,
		Subject: "New contact request from " + ev.Name,
		Text:    txt.String(),
		HTML:    html.String(),
	}, nil
}

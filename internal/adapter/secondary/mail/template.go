package mail

import (
	"bytes"
	"html/template"
)

// brandName is shown in the header of every outgoing email.
const brandName = "Sistema de Consultas Médicas"

// emailTmpl wraps subject and body in the fixed HTML envelope.
// {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
    .content { background-color: #f9f9f9; padding: 20px; border: 1px solid #ddd; border-radius: 0 0 5px 5px; }
    .footer { margin-top: 20px; text-align: center; font-size: 12px; color: #777; }
  </style>
</head>
<body>
  <div class="header">
    <h2>{{.Brand}}</h2>
  </div>
  <div class="content">
    <h3>{{.Subject}}</h3>
    <p style="white-space:pre-wrap;">{{.Body}}</p>
  </div>
  <div class="footer">
    <p>Esta é uma mensagem automática. Por favor, não responda este email.</p>
  </div>
</body>
</html>
`))

// renderEmailHTML renders the HTML envelope for a notification.
func renderEmailHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct{ Brand, Subject, Body string }{brandName, subject, body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

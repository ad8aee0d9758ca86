package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"mime/multipart"
	"net/textproto"
	texttemplate "text/template"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
)

const textBody = `Hi {{.FirstName}},

Thank you for your purchase of {{.ProductTitle}}.

Download your course here: {{.DownloadURL}}

Payment reference: {{.Reference}}
`

const htmlBody = `<html>
  <body>
    <p>Hi {{.FirstName}},</p>
    <p>Thank you for your purchase of <strong>{{.ProductTitle}}</strong>.</p>
    <p><a href="{{.DownloadURL}}">Download your course</a></p>
    <p>Payment reference: {{.Reference}}</p>
  </body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("delivery_text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("delivery_html").Parse(htmlBody))
)

type messageData struct {
	FirstName    string
	ProductTitle string
	DownloadURL  string
	Reference    string
}

// buildMessage renders the dual-part (text + HTML) delivery email.
func buildMessage(cfg config.EmailConfig, payment domain.ConfirmedPayment) ([]byte, error) {
	first, _ := payment.SplitName()
	data := messageData{
		FirstName:    first,
		ProductTitle: cfg.ProductTitle,
		DownloadURL:  cfg.DownloadURL,
		Reference:    payment.Reference,
	}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text part: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html part: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", payment.Email)
	fmt.Fprintf(&buf, "Subject: Your %s purchase\r\n", cfg.ProductTitle)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", writer.Boundary())
	buf.WriteString("\r\n")

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(text.Bytes()); err != nil {
		return nil, err
	}

	part, err = writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html.Bytes()); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

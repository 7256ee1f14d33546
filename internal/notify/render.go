package notify

import (
	"bytes"
	"cvewatch/internal/models"
	"cvewatch/internal/structures"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"strings"
	"time"
)

//go:embed templates/digest.html
var templateFS embed.FS

// Message is one rendered mail.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Date    time.Time
}

// Bytes encodes the message for an SMTP DATA command.
func (m *Message) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.Date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(m.HTML, "\n", "\r\n"))
	return buf.Bytes()
}

type Renderer interface {
	Render(d models.Digest) (*Message, error)
}

type HtmlRenderer struct {
	sender  string
	appName string
	colors  structures.MailColors
	tmpl    *template.Template
	now     func() time.Time
}

type digestView struct {
	Title   string
	AppName string
	Updates bool
	Colors  structures.MailColors
	Matches []models.Match
}

func NewHtmlRenderer(conf *structures.Config) (*HtmlRenderer, error) {
	tmpl, err := template.New("digest.html").Funcs(template.FuncMap{
		"capitalize": models.Capitalize,
		"join":       strings.Join,
	}).ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &HtmlRenderer{
		sender:  conf.Mail.Sender,
		appName: conf.AppName,
		colors:  conf.Mail.Colors,
		tmpl:    tmpl,
		now:     time.Now,
	}, nil
}

func (r *HtmlRenderer) Render(d models.Digest) (*Message, error) {
	view := digestView{
		Title:   Title(d),
		AppName: r.appName,
		Updates: d.HasUpdated(),
		Colors:  r.colors,
		Matches: d.Matches,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("HTML rendering error: %w", err)
	}
	return &Message{
		From:    r.sender,
		To:      d.Recipient,
		Subject: Subject(d),
		HTML:    buf.String(),
		Date:    r.now(),
	}, nil
}

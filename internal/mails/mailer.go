package mails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const retryDelay = 500 * time.Millisecond

type Mailer struct {
	Dialer       *mail.Dialer
	Sender       string
	RetriesCount int
}

func New(host string, port int, timeout time.Duration, username, password, sender string, retriesCount int) *Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = timeout
	if retriesCount < 1 {
		retriesCount = 1
	}
	return &Mailer{
		Dialer:       dialer,
		Sender:       sender,
		RetriesCount: retriesCount,
	}
}

// parseEmailTmpl renders the subject, plainBody and htmlBody blocks of a template.
func parseEmailTmpl(tmplName string, tmplData any) (map[string]string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		return nil, err
	}
	tmplPartials := map[string]string{
		"subject":   "",
		"plainBody": "",
		"htmlBody":  "",
	}
	for key := range tmplPartials {
		buff := new(bytes.Buffer)
		if err = tmpl.ExecuteTemplate(buff, key, tmplData); err != nil {
			return nil, err
		}
		tmplPartials[key] = buff.String()
	}
	return tmplPartials, nil
}

func (m *Mailer) Send(recipient string, tmplName string, tmplData any) error {
	tmplPartials, err := parseEmailTmpl(tmplName, tmplData)
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("Subject", tmplPartials["subject"])
	msg.SetBody("text/plain", tmplPartials["plainBody"])
	msg.AddAlternative("text/html", tmplPartials["htmlBody"])
	for i := 0; i < m.RetriesCount; i++ {
		if i > 0 {
			time.Sleep(retryDelay)
		}
		if err = m.Dialer.DialAndSend(msg); err == nil {
			return nil
		}
	}
	return fmt.Errorf("sending %s to %s: %w", tmplName, recipient, err)
}

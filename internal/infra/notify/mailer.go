package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"

	"quiz-intake-service/internal/domain"
)

// SMTPConfig describes the outbound mail server and the operator mailbox.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	ReplyTo  string
	// To is the operator address that receives every submission.
	To string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer emails each submission to the operator.
type Mailer struct {
	config SMTPConfig
	send   sendFunc
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{config: cfg, send: smtp.SendMail}
}

var submissionTemplate = template.Must(template.New("submission").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
        .info-box { background-color: #e8f4f8; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
        .answer { margin-bottom: 20px; padding: 15px; background-color: #f5f5f5; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1 style="margin: 0;">Quiz: {{.QuizTitle}}</h1>
            <p style="margin: 10px 0 0 0;">New quiz submission</p>
        </div>
        <div class="info-box">
            <h2 style="margin-top: 0;">Respondent</h2>
            <div><strong>Name:</strong> {{.Respondent.FirstName}} {{.Respondent.LastName}}</div>
            <div><strong>Email:</strong> {{.Respondent.Email}}</div>
            <div><strong>Phone:</strong> {{.Respondent.Phone}}</div>
            <div><strong>Submitted:</strong> {{.SubmittedAt}}</div>
        </div>
        <h2>Answers</h2>
        {{range $i, $a := .Answers}}
        <div class="answer">
            <strong>Question {{inc $i}}:</strong> {{$a.Question}}<br/>
            <strong style="color: #0066cc;">Answer:</strong> {{$a.Answer}}
        </div>
        {{end}}
    </div>
</body>
</html>
`))

// NotifySubmission sends the HTML summary of submission to the operator.
func (m *Mailer) NotifySubmission(ctx context.Context, submission domain.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := renderSubmission(submission)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.config.Username != "" || m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	subject := fmt.Sprintf("Quiz %s %s", submission.Respondent.FirstName, submission.Respondent.LastName)
	msg := m.buildMessage(subject, body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := m.send(addr, auth, m.config.From, []string{m.config.To}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: send email: %v", domain.ErrNotificationFailed, err)
	}
	return nil
}

func renderSubmission(submission domain.Submission) (string, error) {
	view := struct {
		QuizTitle   string
		Respondent  domain.Respondent
		SubmittedAt string
		Answers     []struct{ Question, Answer string }
	}{
		QuizTitle:   submission.QuizTitle,
		Respondent:  submission.Respondent,
		SubmittedAt: submission.SubmittedAt.Format("02.01.2006 15:04:05"),
	}
	for _, a := range submission.Answers {
		view.Answers = append(view.Answers, struct{ Question, Answer string }{a.Question, a.Answer.String()})
	}

	var body bytes.Buffer
	if err := submissionTemplate.Execute(&body, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) buildMessage(subject, body string) string {
	msg := fmt.Sprintf("From: %s\r\n", headerValue(m.config.From))
	msg += fmt.Sprintf("To: %s\r\n", headerValue(m.config.To))
	if m.config.ReplyTo != "" {
		msg += fmt.Sprintf("Reply-To: %s\r\n", headerValue(m.config.ReplyTo))
	}
	msg += fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += body
	return msg
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds line breaks into spaces so user input cannot start a new header.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

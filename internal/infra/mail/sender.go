package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type AlertSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

func NewAlertSender(host string, port int, user, password, from, to string) *AlertSender {
	return &AlertSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// SendSyncFailureAlert avisa a operação que uma task de sync esgotou as
// tentativas e foi pra DLQ.
func (s *AlertSender) SendSyncFailureAlert(jobID, source string, attempts int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("[contactship] sync job %s failed after %d attempts", jobID, attempts))
	m.SetBody("text/plain", fmt.Sprintf(
		"Sync job %s (source %s) exhausted its %d delivery attempts and was dead-lettered.\n"+
			"The ledger row is FAILED; check /sync/jobs/%s for the recorded state.\n",
		jobID, source, attempts, jobID,
	))

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}

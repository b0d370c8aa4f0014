package domain

// MailMessage is a fully composed outbound email.
type MailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

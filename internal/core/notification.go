package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NotificationPayload is a validated notification decoded from one broker message.
type NotificationPayload struct {
	RecipientEmail string
	Subject        string
	Body           string
}

// wireNotification mirrors the JSON accepted on the broker. Producers may use
// either the English or the Portuguese key for subject and body. Fields stay
// raw so a non-string value only disqualifies its own key.
type wireNotification struct {
	Email    json.RawMessage `json:"email"`
	Subject  json.RawMessage `json:"subject"`
	Assunto  json.RawMessage `json:"assunto"`
	Message  json.RawMessage `json:"message"`
	Mensagem json.RawMessage `json:"mensagem"`
}

// DecodeNotification parses and validates a broker message body. A payload is
// either complete after alias resolution or rejected as a whole.
func DecodeNotification(body []byte) (NotificationPayload, error) {
	var wire wireNotification
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return NotificationPayload{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return NotificationPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	email := strings.TrimSpace(text(wire.Email))
	if email == "" {
		return NotificationPayload{}, ErrMissingEmail
	}
	if !IsEmailAddress(email) {
		return NotificationPayload{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	subject := firstNonEmpty(text(wire.Subject), text(wire.Assunto))
	if subject == "" {
		return NotificationPayload{}, ErrMissingSubject
	}
	message := firstNonEmpty(text(wire.Message), text(wire.Mensagem))
	if message == "" {
		return NotificationPayload{}, ErrMissingBody
	}

	return NotificationPayload{
		RecipientEmail: email,
		Subject:        subject,
		Body:           message,
	}, nil
}

// text returns raw as a string, or "" when it is absent or not a JSON string.
func text(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Notification is the outbound message published by producers.
type Notification struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// AckDecision tells the broker consumer how to settle a delivery.
type AckDecision int

const (
	// AckDecisionReject settles the delivery negatively without requeue.
	AckDecisionReject AckDecision = iota
	// AckDecisionAck acknowledges the delivery.
	AckDecisionAck
)

func (d AckDecision) String() string {
	if d == AckDecisionAck {
		return "ack"
	}
	return "reject"
}

// DeliveryOutcome is the result of one send attempt: a message ID on success
// or the failure reason.
type DeliveryOutcome struct {
	MessageID string
	Err       error
}

// Delivered builds a successful outcome.
func Delivered(messageID string) DeliveryOutcome {
	return DeliveryOutcome{MessageID: messageID}
}

// DeliveryFailed builds a failed outcome.
func DeliveryFailed(err error) DeliveryOutcome {
	return DeliveryOutcome{Err: err}
}

// Success reports whether the send went through.
func (o DeliveryOutcome) Success() bool {
	return o.Err == nil
}

package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload indicates a broker message body that is not a JSON notification object.
	ErrMalformedPayload = errors.New("notification payload is malformed")
	// ErrMissingEmail is returned when the recipient email field is absent or blank.
	ErrMissingEmail = errors.New(`notification field "email" is missing`)
	// ErrInvalidEmail is returned when the recipient email does not parse as an address.
	ErrInvalidEmail = errors.New(`notification field "email" is not a valid address`)
	// ErrMissingSubject is returned when neither "subject" nor "assunto" is present.
	ErrMissingSubject = errors.New(`notification field "subject" is missing`)
	// ErrMissingBody is returned when neither "message" nor "mensagem" is present.
	ErrMissingBody = errors.New(`notification field "message" is missing`)
	// ErrMailerNotReady is reported when a send is attempted on a sender that never initialized.
	ErrMailerNotReady = errors.New("mail transport is not configured")

	// ErrPaymentNotFound is returned when a payment ID does not exist.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentAlreadyPaid is returned when paying a payment that is no longer pending.
	ErrPaymentAlreadyPaid = errors.New("payment already paid")
	// ErrInvalidPayment wraps every payment validation failure.
	ErrInvalidPayment = errors.New("invalid payment")
)

func invalidPayment(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayment, reason)
}

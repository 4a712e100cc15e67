package settlement

import "errors"

var (
	// ErrGatewayUnavailable is returned when the payment provider did not
	// accept a deposit or withdrawal. Nothing is left charged or reserved.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrPersistence is returned when a transaction accepted by the provider
	// could not be recorded.
	ErrPersistence = errors.New("failed to record pix transaction")
	// ErrWebhookMismatch is returned when a paid webhook disagrees with the
	// recorded amount or user.
	ErrWebhookMismatch = errors.New("webhook does not match the recorded transaction")
	// ErrInvalidPixKey is returned for withdrawals without a destination key.
	ErrInvalidPixKey = errors.New("pix key is required")
)

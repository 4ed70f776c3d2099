package payment

import "context"

// Gateway isolates every network call to the payment processor.
type Gateway interface {
	// Prepare registers the expected amount for a merchant reference so the
	// gateway refuses a tampered amount at authorization time.
	Prepare(ctx context.Context, merchantUID string, amount int64) error
	// Lookup returns ErrGatewayRecordNotFound for an unknown reference and
	// ErrGatewayUnreachable for transport failures or timeouts.
	Lookup(ctx context.Context, merchantUID string) (*GatewayRecord, error)
}

// MapStatus converts the gateway vocabulary into PayStatus. Unknown values
// stay non-terminal.
func MapStatus(s string) (PayStatus, bool) {
	switch PayStatus(s) {
	case StatusReady, StatusPaid, StatusCancelled, StatusFailed:
		return PayStatus(s), true
	}
	return StatusReady, false
}

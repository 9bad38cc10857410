/**
 * @description
 * This file defines the core domain models for the payout engine. These structs
 * represent the main entities and data transfer objects (DTOs) used throughout
 * the service's business logic, storage, and API layers.
 *
 * @notes
 * - Timestamps are stored as milliseconds since epoch (`int64`) to stay wire
 *   compatible with the dashboard frontend, which compares them numerically
 *   when sorting and rendering lifecycle progress.
 * - JSON field names mirror the persisted document layout exactly; any storage
 *   backend must round-trip these fields unchanged.
 */

package domain

// Payout job lifecycle statuses. `queued` is the sole initial status;
// `completed`, `failed` and `canceled` are terminal.
const (
	PayoutStatusQueued     = "queued"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusCanceled   = "canceled"
)

// PayoutRecipient is one wallet/percentage pair within a payout job.
type PayoutRecipient struct {
	Wallet     string  `json:"wallet"`
	Percentage float64 `json:"percentage"`
}

// PayoutJob represents a single requested distribution of a USD-denominated
// amount, in a chosen token, across a list of recipients.
type PayoutJob struct {
	ID         string            `json:"id"`
	Token      string            `json:"token"`
	AmountUSD  float64           `json:"amountUSD"`
	Recipients []PayoutRecipient `json:"recipients"`
	Status     string            `json:"status"`
	CreatedAt  int64             `json:"createdAt"` // epoch millis
	UpdatedAt  int64             `json:"updatedAt"` // epoch millis
}

// IsTerminal reports whether the job status admits no further ticker-driven
// or cancel transitions.
func (j *PayoutJob) IsTerminal() bool {
	return IsTerminalStatus(j.Status)
}

// IsTerminalStatus reports whether a status is terminal.
func IsTerminalStatus(status string) bool {
	switch status {
	case PayoutStatusCompleted, PayoutStatusFailed, PayoutStatusCanceled:
		return true
	}
	return false
}

// CreatePayoutRequest is the DTO for incoming payout creation API requests.
type CreatePayoutRequest struct {
	Token      string            `json:"token"`
	AmountUSD  float64           `json:"amountUSD"`
	Recipients []PayoutRecipient `json:"recipients"`
}

// RecipientShare is the computed token-denominated share for a single
// recipient, echoed back on payout creation.
type RecipientShare struct {
	Wallet      string  `json:"wallet"`
	Percentage  float64 `json:"percentage"`
	AmountUSD   float64 `json:"amountUSD"`
	AmountToken float64 `json:"amountToken"`
}

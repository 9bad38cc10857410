package domain

// Collaborator is a registered party entitled to a percentage share of royalty
// payouts. Percentage bounds are a convention enforced by the dashboard before
// submission; the registry only requires a name and wallet.
type Collaborator struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Wallet     string  `json:"wallet"`
	Percentage float64 `json:"percentage"`
	Role       *string `json:"role,omitempty"`
	CreatedAt  int64   `json:"createdAt"` // epoch millis
}

// CreateCollaboratorRequest is the DTO for incoming collaborator creation
// requests. Percentage is optional and defaults to 0 when omitted.
type CreateCollaboratorRequest struct {
	Name       string   `json:"name"`
	Wallet     string   `json:"wallet"`
	Percentage *float64 `json:"percentage,omitempty"`
	Role       *string  `json:"role,omitempty"`
}

// CollaboratorPatch carries partial field updates for a collaborator. Nil
// fields are left untouched; set fields are merged last-write-wins.
type CollaboratorPatch struct {
	Name       *string  `json:"name,omitempty"`
	Wallet     *string  `json:"wallet,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	Role       *string  `json:"role,omitempty"`
}

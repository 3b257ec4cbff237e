package model

// ActionType discriminates client-submitted actions
type ActionType string

const (
	ActionClick      ActionType = "click"
	ActionBuyUpgrade ActionType = "buy_upgrade"
)

// Action is one entry of a client action batch. Batches are ephemeral:
// they are applied in a single reconciliation pass and never persisted.
type Action struct {
	Type ActionType `json:"type"`
	Data ActionData `json:"data"`
}

// ActionData carries the per-action payload
type ActionData struct {
	UpgradeID string `json:"upgrade_id,omitempty"`
}

// Validate checks the action is well formed. It does not consult the
// catalog; unknown-but-well-formed upgrade ids fail later during pricing.
func (a Action) Validate() error {
	switch a.Type {
	case ActionClick:
		return nil
	case ActionBuyUpgrade:
		if a.Data.UpgradeID == "" {
			return ErrInvalidAction
		}
		return nil
	default:
		return ErrInvalidAction
	}
}

package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Name string `json:"name"`
}

// ActionData carries the payload for a single action
type ActionData struct {
	UpgradeID string `json:"upgrade_id,omitempty"`
}

// Action is one entry of an action batch
type Action struct {
	Type string     `json:"type"`
	Data ActionData `json:"data"`
}

// ActionBatchRequest is the request body for submitting actions
type ActionBatchRequest struct {
	Actions []Action `json:"actions"`
}

// FriendRequestRequest is the request body for sending a friend request
type FriendRequestRequest struct {
	Name string `json:"name"`
}

// GenerateUpgradeRequest is the request body for the upgrade suggestion box
type GenerateUpgradeRequest struct {
	Theme string `json:"theme,omitempty"`
}

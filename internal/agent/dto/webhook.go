package dto

// WebhookRequest is an inbound chat message from the Telex webhook.
type WebhookRequest struct {
	Content   string `json:"content"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WebhookResponse is the chat reply sent back to the channel.
type WebhookResponse struct {
	Response  string `json:"response"`
	ChannelID string `json:"channel_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

package router

// Envelope is the wire shape of every simulator message. MQTT 3.1.1
// frames carry no per-message metadata, so the sender identity a
// receiver needs for echo suppression rides inside the JSON body
// alongside the actual content.
type Envelope struct {
	// SenderID identifies the publishing client, e.g. "simulator-host1".
	// An empty value is treated as missing and logged as an anomaly.
	SenderID string `json:"sender_id"`

	// SenderGroup names the fleet the sender belongs to. Every
	// simulator replica publishes as the same group, so replicas can
	// drop each other's traffic without comparing individual ids.
	SenderGroup string `json:"sender_group"`

	// Contents carries the device record or partial update.
	Contents map[string]any `json:"contents"`
}

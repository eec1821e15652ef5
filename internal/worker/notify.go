package worker

// RenderNotifyMessage is the websocket message protocol relayed to the
// browser over Redis pub/sub. Field names match the frontend parser.
type RenderNotifyMessage struct {
	Status        string   `json:"status"`
	CorrelationID string   `json:"correlation_id"`
	ObjectKey     string   `json:"object_key,omitempty"`
	Pages         int      `json:"pages,omitempty"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	Warnings      []string `json:"warnings,omitempty"`
}

package live

// Event types streamed to the browser.
const (
	EventToast    = "toast"
	EventDismiss  = "dismiss"
	EventNavigate = "navigate"
)

// Event is one JSON message on the live channel.
type Event struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Toast is the notification currently shown by a view.
type Toast struct {
	Kind    string
	Message string
}

package protocol

import "encoding/json"

type InitializedNotification struct{}

// ProgressNotification reports progress of a long running request.
type ProgressNotification struct {
	ProgressToken json.RawMessage `json:"progressToken"`
	Progress      float64         `json:"progress"`
	Total         *float64        `json:"total,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// LoggingMessageNotification carries a log record from server to client.
type LoggingMessageNotification struct {
	Level  string          `json:"level"`
	Logger string          `json:"logger,omitempty"`
	Data   json.RawMessage `json:"data"`
}

type CancelledNotification struct {
	RequestID RequestID `json:"requestId"`
	Reason    string    `json:"reason,omitempty"`
}

type ResourceUpdatedNotification struct {
	URI string `json:"uri"`
}

type ToolListChangedNotification struct{}

// UnknownNotification holds a notification whose method is not part of the known set.
type UnknownNotification struct {
	Name string
	Raw  json.RawMessage
}

func (*InitializedNotification) Method() string     { return "notifications/initialized" }
func (*ProgressNotification) Method() string        { return "notifications/progress" }
func (*LoggingMessageNotification) Method() string  { return "notifications/message" }
func (*CancelledNotification) Method() string       { return "notifications/cancelled" }
func (*ResourceUpdatedNotification) Method() string { return "notifications/resources/updated" }
func (*ToolListChangedNotification) Method() string { return "notifications/tools/list_changed" }
func (n *UnknownNotification) Method() string       { return n.Name }

func (*InitializedNotification) isNotification()     {}
func (*ProgressNotification) isNotification()        {}
func (*LoggingMessageNotification) isNotification()  {}
func (*CancelledNotification) isNotification()       {}
func (*ResourceUpdatedNotification) isNotification() {}
func (*ToolListChangedNotification) isNotification() {}
func (*UnknownNotification) isNotification()         {}

var notificationKinds = map[string]func() NotificationParams{
	"notifications/initialized":        func() NotificationParams { return &InitializedNotification{} },
	"notifications/progress":           func() NotificationParams { return &ProgressNotification{} },
	"notifications/message":            func() NotificationParams { return &LoggingMessageNotification{} },
	"notifications/cancelled":          func() NotificationParams { return &CancelledNotification{} },
	"notifications/resources/updated":  func() NotificationParams { return &ResourceUpdatedNotification{} },
	"notifications/tools/list_changed": func() NotificationParams { return &ToolListChangedNotification{} },
}

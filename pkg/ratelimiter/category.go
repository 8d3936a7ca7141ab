package ratelimiter

import "fmt"

// Category is the rate limiting class of an outbound message. Each category has its own bucket.
type Category uint32

const (
	ProgressNotification Category = iota
	LoggingMessage
	SamplingRequest
	CompletionRequest
	ElicitationRequest
	ToolCall
	Other
)

// Categories lists every category in declaration order.
var Categories = []Category{
	ProgressNotification,
	LoggingMessage,
	SamplingRequest,
	CompletionRequest,
	ElicitationRequest,
	ToolCall,
	Other,
}

var categoryStrings = map[Category]string{
	ProgressNotification: "progress_notification",
	LoggingMessage:       "logging_message",
	SamplingRequest:      "sampling_request",
	CompletionRequest:    "completion_request",
	ElicitationRequest:   "elicitation_request",
	ToolCall:             "tool_call",
	Other:                "other",
}

func (c Category) String() string {
	if s, ok := categoryStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", uint32(c))
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryStrings {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown message category %q", s)
}

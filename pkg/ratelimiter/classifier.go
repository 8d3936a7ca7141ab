package ratelimiter

import "github.com/lowc1012/rate-limited-transport/pkg/protocol"

// Classify maps an outbound message to its category. Only the message's variant is inspected;
// responses, unknown methods and nil all fall into Other.
func Classify(msg protocol.Message) Category {
	switch m := msg.(type) {
	case *protocol.Request:
		if m == nil {
			return Other
		}
		return classifyRequest(m.Params)
	case *protocol.Notification:
		if m == nil {
			return Other
		}
		return classifyNotification(m.Params)
	default:
		return Other
	}
}

func classifyRequest(params protocol.RequestParams) Category {
	switch params.(type) {
	case *protocol.CompleteRequest:
		return CompletionRequest
	case *protocol.CallToolRequest:
		return ToolCall
	case *protocol.CreateMessageRequest:
		return SamplingRequest
	case *protocol.CreateElicitationRequest:
		return ElicitationRequest
	default:
		return Other
	}
}

func classifyNotification(params protocol.NotificationParams) Category {
	switch params.(type) {
	case *protocol.ProgressNotification:
		return ProgressNotification
	case *protocol.LoggingMessageNotification:
		return LoggingMessage
	default:
		return Other
	}
}

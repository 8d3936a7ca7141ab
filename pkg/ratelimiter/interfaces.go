package ratelimiter

import "github.com/lowc1012/rate-limited-transport/pkg/protocol"

type State uint32

const (
	Deny State = iota
	Allow
)

var stateStrings = map[State]string{
	Allow: "Allow",
	Deny:  "Deny",
}

func (s State) String() string {
	return stateStrings[s]
}

// Checker decides whether an outbound message may be sent now. A nil error admits the message.
type Checker interface {
	Check(msg protocol.Message) error
}

// Stats counts the decisions taken for one category.
type Stats struct {
	Allowed uint64
	Denied  uint64
}

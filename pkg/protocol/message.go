// Package protocol defines the closed set of JSON-RPC messages exchanged by clients and servers.
//
// Every message is one of four envelope variants (Request, Notification, Response, ErrorResponse).
// Requests and notifications carry typed params; the set of params types is sealed by unexported
// marker methods so that consumers can switch over them exhaustively.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Version is the JSON-RPC version written into every envelope.
const Version = "2.0"

// Message is any JSON-RPC message.
type Message interface {
	isMessage()
}

// RequestParams is implemented by every request kind.
type RequestParams interface {
	Method() string
	isRequest()
}

// NotificationParams is implemented by every notification kind.
type NotificationParams interface {
	Method() string
	isNotification()
}

// Request expects a Response or ErrorResponse carrying the same ID.
//
// Decode keeps the params exactly as received in RawParams, including fields the typed Params
// do not declare. Encode writes RawParams when set and only encodes Params otherwise.
type Request struct {
	ID        RequestID
	Params    RequestParams
	RawParams json.RawMessage
}

// Notification is a one-way message. RawParams behaves as on Request.
type Notification struct {
	Params    NotificationParams
	RawParams json.RawMessage
}

// Response is a successful reply to a Request.
type Response struct {
	ID     RequestID
	Result json.RawMessage
}

// ErrorResponse is a failed reply to a Request.
type ErrorResponse struct {
	ID    RequestID
	Error RPCError
}

func (*Request) isMessage()       {}
func (*Notification) isMessage()  {}
func (*Response) isMessage()      {}
func (*ErrorResponse) isMessage() {}

// RPCError is the error object of an ErrorResponse.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RequestID is a number or a string. Error responses to unparseable requests carry NullID.
type RequestID struct {
	num    int64
	str    string
	isStr  bool
	isNull bool
}

func NumberID(n int64) RequestID { return RequestID{num: n} }

func StringID(s string) RequestID { return RequestID{str: s, isStr: true} }

func NullID() RequestID { return RequestID{isNull: true} }

func (id RequestID) IsNull() bool { return id.isNull }

func (id RequestID) String() string {
	switch {
	case id.isNull:
		return "null"
	case id.isStr:
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	switch {
	case id.isNull:
		return []byte("null"), nil
	case id.isStr:
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

func (id *RequestID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = NullID()
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("request id must be a string or an integer: %w", err)
	}
	*id = NumberID(n)
	return nil
}

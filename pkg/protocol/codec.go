package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Decode for input that is not a JSON-RPC 2.0 message.
var ErrMalformed = errors.New("malformed json-rpc message")

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Encode serializes msg into a single JSON-RPC 2.0 object.
func Encode(msg Message) ([]byte, error) {
	env := envelope{JSONRPC: Version}
	switch m := msg.(type) {
	case *Request:
		if m == nil || m.Params == nil {
			return nil, fmt.Errorf("%w: request without params", ErrMalformed)
		}
		params, err := paramsOf(m.RawParams, m.Params)
		if err != nil {
			return nil, err
		}
		if env.ID, err = json.Marshal(m.ID); err != nil {
			return nil, err
		}
		env.Method, env.Params = m.Params.Method(), params
	case *Notification:
		if m == nil || m.Params == nil {
			return nil, fmt.Errorf("%w: notification has no params", ErrMalformed)
		}
		params, err := paramsOf(m.RawParams, m.Params)
		if err != nil {
			return nil, err
		}
		env.Method, env.Params = m.Params.Method(), params
	case *Response:
		if m == nil {
			return nil, fmt.Errorf("%w: nil response", ErrMalformed)
		}
		var err error
		if env.ID, err = json.Marshal(m.ID); err != nil {
			return nil, err
		}
		env.Result = m.Result
		if len(env.Result) == 0 {
			env.Result = json.RawMessage("{}")
		}
	case *ErrorResponse:
		if m == nil {
			return nil, fmt.Errorf("%w: nil error response", ErrMalformed)
		}
		var err error
		if env.ID, err = json.Marshal(m.ID); err != nil {
			return nil, err
		}
		rpcErr := m.Error
		env.Error = &rpcErr
	default:
		return nil, fmt.Errorf("%w: unsupported message type %T", ErrMalformed, msg)
	}
	return json.Marshal(env)
}

func paramsOf(raw json.RawMessage, p interface{}) (json.RawMessage, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return encodeParams(p)
}

func encodeParams(p interface{}) (json.RawMessage, error) {
	switch v := p.(type) {
	case *UnknownRequest:
		return v.Raw, nil
	case *UnknownNotification:
		return v.Raw, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(b, []byte("{}")) {
		return nil, nil
	}
	return b, nil
}

// Decode parses a single JSON-RPC 2.0 object. Methods outside the known set decode to
// UnknownRequest or UnknownNotification.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.JSONRPC != Version {
		return nil, fmt.Errorf("%w: unsupported jsonrpc version %q", ErrMalformed, env.JSONRPC)
	}

	// a present but null id is kept as NullID, an absent one makes a notification
	hasID := len(env.ID) > 0
	var id RequestID
	if hasID {
		if err := json.Unmarshal(env.ID, &id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	switch {
	case env.Method != "" && hasID:
		params, err := decodeRequest(env.Method, env.Params)
		if err != nil {
			return nil, err
		}
		return &Request{ID: id, Params: params, RawParams: env.Params}, nil
	case env.Method != "":
		params, err := decodeNotification(env.Method, env.Params)
		if err != nil {
			return nil, err
		}
		return &Notification{Params: params, RawParams: env.Params}, nil
	case hasID && env.Error != nil:
		return &ErrorResponse{ID: id, Error: *env.Error}, nil
	case hasID && env.Result != nil:
		return &Response{ID: id, Result: env.Result}, nil
	}
	return nil, fmt.Errorf("%w: neither request, notification nor response", ErrMalformed)
}

func decodeRequest(method string, raw json.RawMessage) (RequestParams, error) {
	newParams, ok := requestKinds[method]
	if !ok {
		return &UnknownRequest{Name: method, Raw: raw}, nil
	}
	p := newParams()
	if err := unmarshalParams(raw, p); err != nil {
		return nil, fmt.Errorf("%w: params of %s: %v", ErrMalformed, method, err)
	}
	return p, nil
}

func decodeNotification(method string, raw json.RawMessage) (NotificationParams, error) {
	newParams, ok := notificationKinds[method]
	if !ok {
		return &UnknownNotification{Name: method, Raw: raw}, nil
	}
	p := newParams()
	if err := unmarshalParams(raw, p); err != nil {
		return nil, fmt.Errorf("%w: params of %s: %v", ErrMalformed, method, err)
	}
	return p, nil
}

func unmarshalParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

package protocol

import "encoding/json"

// Implementation names a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeRequest struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      Implementation  `json:"clientInfo"`
}

type PingRequest struct{}

type ListToolsRequest struct {
	Cursor string `json:"cursor,omitempty"`
}

// CallToolRequest invokes a tool on the server.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CompletionReference points at the prompt or resource being completed.
type CompletionReference struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

type CompletionArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompleteRequest asks for argument autocompletion.
type CompleteRequest struct {
	Ref      CompletionReference `json:"ref"`
	Argument CompletionArgument  `json:"argument"`
}

type ListResourcesRequest struct {
	Cursor string `json:"cursor,omitempty"`
}

type ReadResourceRequest struct {
	URI string `json:"uri"`
}

type ListPromptsRequest struct {
	Cursor string `json:"cursor,omitempty"`
}

type GetPromptRequest struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type SetLevelRequest struct {
	Level string `json:"level"`
}

// CreateMessageRequest is a sampling request sent from server to client.
type CreateMessageRequest struct {
	Messages     json.RawMessage `json:"messages"`
	SystemPrompt string          `json:"systemPrompt,omitempty"`
	MaxTokens    int             `json:"maxTokens"`
}

// CreateElicitationRequest asks the user, through the client, to fill in a form.
type CreateElicitationRequest struct {
	Message         string          `json:"message"`
	RequestedSchema json.RawMessage `json:"requestedSchema"`
}

type ListRootsRequest struct{}

// UnknownRequest holds a request whose method is not part of the known set.
type UnknownRequest struct {
	Name string
	Raw  json.RawMessage
}

func (*InitializeRequest) Method() string        { return "initialize" }
func (*PingRequest) Method() string              { return "ping" }
func (*ListToolsRequest) Method() string         { return "tools/list" }
func (*CallToolRequest) Method() string          { return "tools/call" }
func (*CompleteRequest) Method() string          { return "completion/complete" }
func (*ListResourcesRequest) Method() string     { return "resources/list" }
func (*ReadResourceRequest) Method() string      { return "resources/read" }
func (*ListPromptsRequest) Method() string       { return "prompts/list" }
func (*GetPromptRequest) Method() string         { return "prompts/get" }
func (*SetLevelRequest) Method() string          { return "logging/setLevel" }
func (*CreateMessageRequest) Method() string     { return "sampling/createMessage" }
func (*CreateElicitationRequest) Method() string { return "elicitation/create" }
func (*ListRootsRequest) Method() string         { return "roots/list" }
func (r *UnknownRequest) Method() string         { return r.Name }

func (*InitializeRequest) isRequest()        {}
func (*PingRequest) isRequest()              {}
func (*ListToolsRequest) isRequest()         {}
func (*CallToolRequest) isRequest()          {}
func (*CompleteRequest) isRequest()          {}
func (*ListResourcesRequest) isRequest()     {}
func (*ReadResourceRequest) isRequest()      {}
func (*ListPromptsRequest) isRequest()       {}
func (*GetPromptRequest) isRequest()         {}
func (*SetLevelRequest) isRequest()          {}
func (*CreateMessageRequest) isRequest()     {}
func (*CreateElicitationRequest) isRequest() {}
func (*ListRootsRequest) isRequest()         {}
func (*UnknownRequest) isRequest()           {}

var requestKinds = map[string]func() RequestParams{
	"initialize":             func() RequestParams { return &InitializeRequest{} },
	"ping":                   func() RequestParams { return &PingRequest{} },
	"tools/list":             func() RequestParams { return &ListToolsRequest{} },
	"tools/call":             func() RequestParams { return &CallToolRequest{} },
	"completion/complete":    func() RequestParams { return &CompleteRequest{} },
	"resources/list":         func() RequestParams { return &ListResourcesRequest{} },
	"resources/read":         func() RequestParams { return &ReadResourceRequest{} },
	"prompts/list":           func() RequestParams { return &ListPromptsRequest{} },
	"prompts/get":            func() RequestParams { return &GetPromptRequest{} },
	"logging/setLevel":       func() RequestParams { return &SetLevelRequest{} },
	"sampling/createMessage": func() RequestParams { return &CreateMessageRequest{} },
	"elicitation/create":     func() RequestParams { return &CreateElicitationRequest{} },
	"roots/list":             func() RequestParams { return &ListRootsRequest{} },
}

package server

// Message types
const (
	TypeInvoke   = "invoke"
	TypeCommands = "commands"
	TypePing     = "ping"

	TypeResult = "result"
	TypePong   = "pong"
	TypeError  = "error"
)

// Error codes sent in error payloads
const (
	CodeInvalidMessage = "invalid_message"
	CodeUnknownType    = "unknown_type"
	CodeInvalidRequest = "invalid_request"
	CodeNotAllowed     = "not_allowed"
)

// Request is a client message. An invoke carries either Args (named),
// Params (positional) or Line, a full command line parsed by the server.
type Request struct {
	Type    string                 `json:"type"`
	ID      string                 `json:"id,omitempty"`
	Command string                 `json:"command,omitempty"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Params  []interface{}          `json:"params,omitempty"`
	Line    string                 `json:"line,omitempty"`
}

// Response is a server message
type Response struct {
	Type         string        `json:"type"`
	ID           string        `json:"id,omitempty"`
	InvocationID string        `json:"invocation_id,omitempty"`
	Output       string        `json:"output,omitempty"`
	Found        *bool         `json:"found,omitempty"`
	Commands     []string      `json:"commands,omitempty"`
	Error        *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload describes a failed request or a failed invocation
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorResponse(id, code, message string) Response {
	return Response{Type: TypeError, ID: id, Error: &ErrorPayload{Code: code, Message: message}}
}

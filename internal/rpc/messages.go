package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// InvokeRequest names a command and its arguments. Exactly one of Args,
// Params or Line is used; Line is a full command line.
type InvokeRequest struct {
	Command string
	Args    map[string]interface{}
	Params  []interface{}
	Line    string
}

// InvokeResult is the rendered outcome of an invocation
type InvokeResult struct {
	RequestID    string
	InvocationID string
	Output       string
	Found        bool
	ErrorCode    string
	ErrorMessage string
}

// Failed reports whether the invocation produced an error
func (r InvokeResult) Failed() bool {
	return !r.Found || r.ErrorCode != ""
}

func (r InvokeRequest) toStruct() (*structpb.Struct, error) {
	fields := map[string]interface{}{}
	if r.Command != "" {
		fields["command"] = r.Command
	}
	if r.Line != "" {
		fields["line"] = r.Line
	}
	if len(r.Args) > 0 {
		fields["args"] = r.Args
	}
	if len(r.Params) > 0 {
		fields["params"] = r.Params
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return s, nil
}

func invokeRequestFrom(s *structpb.Struct) (InvokeRequest, error) {
	var req InvokeRequest
	m := s.AsMap()
	for key, v := range m {
		switch key {
		case "command":
			str, ok := v.(string)
			if !ok {
				return req, fmt.Errorf("command must be a string")
			}
			req.Command = str
		case "line":
			str, ok := v.(string)
			if !ok {
				return req, fmt.Errorf("line must be a string")
			}
			req.Line = str
		case "args":
			args, ok := v.(map[string]interface{})
			if !ok {
				return req, fmt.Errorf("args must be an object")
			}
			req.Args = args
		case "params":
			params, ok := v.([]interface{})
			if !ok {
				return req, fmt.Errorf("params must be a list")
			}
			req.Params = params
		default:
			return req, fmt.Errorf("unknown field %q", key)
		}
	}
	return req, nil
}

func (r InvokeResult) toStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":            structpb.NewStringValue(r.RequestID),
		"invocation_id": structpb.NewStringValue(r.InvocationID),
		"output":        structpb.NewStringValue(r.Output),
		"found":         structpb.NewBoolValue(r.Found),
	}
	if r.ErrorCode != "" {
		fields["error_code"] = structpb.NewStringValue(r.ErrorCode)
		fields["error_message"] = structpb.NewStringValue(r.ErrorMessage)
	}
	return &structpb.Struct{Fields: fields}
}

func invokeResultFrom(s *structpb.Struct) InvokeResult {
	f := s.GetFields()
	return InvokeResult{
		RequestID:    f["id"].GetStringValue(),
		InvocationID: f["invocation_id"].GetStringValue(),
		Output:       f["output"].GetStringValue(),
		Found:        f["found"].GetBoolValue(),
		ErrorCode:    f["error_code"].GetStringValue(),
		ErrorMessage: f["error_message"].GetStringValue(),
	}
}

func commandsToStruct(names []string) (*structpb.Struct, error) {
	list := make([]interface{}, len(names))
	for i, n := range names {
		list[i] = n
	}
	return structpb.NewStruct(map[string]interface{}{"commands": list})
}

func commandsFrom(s *structpb.Struct) []string {
	values := s.GetFields()["commands"].GetListValue().GetValues()
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.GetStringValue())
	}
	return names
}

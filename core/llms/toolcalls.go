package llms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedToolCall marks a tool call whose fragments could not be
// reassembled into a valid request.
var ErrMalformedToolCall = errors.New("malformed tool call payload")

// AssembleToolCall reconstructs a single logical tool call from its streamed
// fragments. Argument chunks are concatenated strictly in arrival order;
// identity comes from the first fragment that carries it. When the engine
// omits the call id, one is minted.
//
// A fragment belonging to a different logical call (mismatched id or index)
// is an error: only one action per reply is supported.
//
// On error the returned call still carries whatever identity and raw
// argument text was assembled, so callers can record the failed intent.
func AssembleToolCall(fragments []ToolCallFragment) (ToolCall, error) {
	if len(fragments) == 0 {
		return ToolCall{}, fmt.Errorf("%w: no fragments", ErrMalformedToolCall)
	}

	call := ToolCall{}
	index := fragments[0].Index
	var arguments strings.Builder
	for _, fragment := range fragments {
		if fragment.Index != index {
			call.Arguments = arguments.String()
			return call, fmt.Errorf("%w: fragment for a second call (index %d)", ErrMalformedToolCall, fragment.Index)
		}
		if fragment.ID != "" {
			if call.ID == "" {
				call.ID = fragment.ID
			} else if fragment.ID != call.ID {
				call.Arguments = arguments.String()
				return call, fmt.Errorf("%w: fragment for a second call (id %q)", ErrMalformedToolCall, fragment.ID)
			}
		}
		if fragment.Name != "" && call.Name == "" {
			call.Name = fragment.Name
		}
		arguments.WriteString(fragment.Arguments)
	}
	call.Arguments = arguments.String()

	if call.Name == "" {
		return call, fmt.Errorf("%w: missing function name", ErrMalformedToolCall)
	}
	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}
	if call.Arguments == "" {
		call.Arguments = "{}"
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(call.Arguments), &parsed); err != nil {
		return call, fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}

	return call, nil
}

// UnmarshalArguments parses the call's raw argument text into v.
func (c ToolCall) UnmarshalArguments(v any) error {
	arguments := c.Arguments
	if arguments == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedToolCall, err)
	}
	return nil
}

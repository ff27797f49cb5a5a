package llms

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Tool declares a callable action offered to the completion engine.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// NewTool declares a tool whose parameter schema is reflected from the given
// arguments struct. Fields without omitempty become required. Pass nil for
// tools that take no arguments.
func NewTool(name, description string, arguments any) Tool {
	tool := Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        name,
			Description: description,
		},
	}
	if arguments == nil {
		return tool
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	var schema *jsonschema.Schema
	if reflect.TypeOf(arguments).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(arguments).Elem())
	} else {
		schema = reflector.Reflect(arguments)
	}
	schema.Version = ""
	tool.Function.Parameters = schema
	return tool
}

package workbench

import (
	"context"

	"github.com/mitchellh/mapstructure"
)

// ParamType is the declared wire type of an action parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
)

// Param describes one action parameter. The description is surfaced to the
// host's introspection; the registry itself performs no enforcement beyond
// type coercion in DecodeArgs.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// HandlerFunc executes one action invocation. Implementations must not panic
// or return raw errors past this boundary: library failures are converted
// into the error variant of the Response envelope.
type HandlerFunc func(ctx context.Context, args map[string]any) Response

// Action is one entry of a collection's explicit registration table.
type Action struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// DecodeArgs coerces a host-supplied argument map into a typed args struct
// (mapstructure tags). Numeric arguments arrive as float64 from JSON hosts;
// weak typing converts them to the declared field types. Decode failures are
// validation errors.
func DecodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Internalf("argument decoder: %v", err)
	}
	if err := dec.Decode(args); err != nil {
		return Validationf("invalid arguments: %v", err)
	}
	return nil
}

package workbench_test

import (
	"context"
	"fmt"

	"github.com/aretw0/workbench"
)

type calculator struct{}

func (calculator) Name() string { return "calculator" }

func (calculator) Actions() []workbench.Action {
	return []workbench.Action{{
		Name:        "add",
		Description: "Add two numbers.",
		Params: []workbench.Param{
			{Name: "a", Type: workbench.ParamNumber, Required: true},
			{Name: "b", Type: workbench.ParamNumber, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) workbench.Response {
			var in struct {
				A float64 `mapstructure:"a"`
				B float64 `mapstructure:"b"`
			}
			if err := workbench.DecodeArgs(args, &in); err != nil {
				return workbench.FromError(err)
			}
			return workbench.Success(fmt.Sprintf("%g", in.A+in.B))
		},
	}}
}

// ExampleNewRegistry shows the minimal embedding flow: declare a collection,
// register it and invoke an action.
func ExampleNewRegistry() {
	registry, err := workbench.NewRegistry(calculator{})
	if err != nil {
		fmt.Println(err)
		return
	}

	resp, err := registry.Invoke(context.Background(), "add", map[string]any{"a": 2, "b": 40})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(resp.OK())
	fmt.Println(resp.Content())
	// Output:
	// true
	// 42
}

// ExampleFromError shows how sandbox and validation errors carry their kind
// into the response envelope.
func ExampleFromError() {
	resp := workbench.FromError(workbench.NotFoundf("the file does not exist: %s", "report.xlsx"))

	fmt.Println(resp.OK())
	fmt.Println(resp.ErrKind())
	fmt.Println(resp.ErrMessage())
	// Output:
	// false
	// not_found
	// the file does not exist: report.xlsx
}

package workbench

import (
	"context"
	"fmt"
	"log/slog"
)

// Transport selects how an action set is served to its host.
type Transport string

const (
	// TransportStdio serves over stdin/stdout (local agent integrations).
	TransportStdio Transport = "stdio"
	// TransportSSE serves over Server-Sent Events on a TCP port.
	TransportSSE Transport = "sse"
)

// Config carries the construction parameters for an action set. It is
// immutable after construction; the environment is never read here — the
// caller resolves env-provided defaults at the process boundary and threads
// them through WorkspaceDefault.
type Config struct {
	// Name identifies the action set (used as the MCP server name).
	Name string
	// Transport selects stdio or SSE serving.
	Transport Transport
	// Port is the SSE listen port; required iff Transport is sse.
	Port int
	// Workspace is the explicit workspace path, optional.
	Workspace string
	// WorkspaceDefault is the environment-provided fallback workspace.
	WorkspaceDefault string
	// Unittest suppresses actually starting a serving loop.
	Unittest bool
	// Logger is the application logger; slog.Default when nil.
	Logger *slog.Logger
}

// Validate checks the configuration shape.
func (c Config) Validate() error {
	if c.Name == "" {
		return Validationf("config: name must not be empty")
	}
	switch c.Transport {
	case TransportStdio, "":
	case TransportSSE:
		if c.Port <= 0 {
			return Validationf("config: port is required for the sse transport")
		}
	default:
		return Validationf("config: unknown transport %q (supported: stdio, sse)", c.Transport)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Collection is a cohesive set of related actions sharing one workspace
// sandbox and one logger. Actions returns the explicit registration table;
// the set must be stable for the life of the collection.
type Collection interface {
	Name() string
	Actions() []Action
}

// Base carries the plumbing shared by every collection: the resolved
// workspace sandbox and a logger bound to the collection name. Concrete
// collections embed it and build it with NewBase.
type Base struct {
	name    string
	sandbox *Sandbox
	logger  *slog.Logger
}

// NewBase validates cfg, resolves the workspace and builds the sandbox with
// the collection's extension allow-list (none = unrestricted, an explicit
// per-collection policy).
func NewBase(cfg Config, name string, extensions ...string) (*Base, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, Validationf("collection name must not be empty")
	}
	logger := cfg.logger().With("collection", name)
	root := ResolveWorkspace(cfg.Workspace, cfg.WorkspaceDefault, logger)
	return &Base{
		name:    name,
		sandbox: NewSandbox(root, extensions...),
		logger:  logger,
	}, nil
}

// Name returns the collection name.
func (b *Base) Name() string { return b.name }

// Sandbox returns the workspace sandbox shared by the collection's actions.
func (b *Base) Sandbox() *Sandbox { return b.sandbox }

// Workspace returns the resolved workspace root.
func (b *Base) Workspace() string { return b.sandbox.Root() }

// Logger returns the collection-bound logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// Registry is the immutable action table assembled from one or more
// collections. It is built once, before any action is invoked, and never
// mutated afterwards; concurrent invocations are safe.
type Registry struct {
	actions map[string]Action
	order   []string
}

// NewRegistry registers every action of every collection. A duplicate action
// name is a construction-time error: nothing is silently dropped or
// overwritten. Registration order follows the collections' declared tables
// and carries no semantic weight.
func NewRegistry(collections ...Collection) (*Registry, error) {
	r := &Registry{actions: make(map[string]Action)}
	for _, col := range collections {
		for _, a := range col.Actions() {
			if a.Name == "" {
				return nil, fmt.Errorf("collection %q declares an unnamed action", col.Name())
			}
			if a.Handler == nil {
				return nil, fmt.Errorf("action %q has no handler", a.Name)
			}
			if _, exists := r.actions[a.Name]; exists {
				return nil, fmt.Errorf("duplicate action name %q (collection %q)", a.Name, col.Name())
			}
			r.actions[a.Name] = a
			r.order = append(r.order, a.Name)
		}
	}
	return r, nil
}

// Actions returns the registered actions in registration order.
func (r *Registry) Actions() []Action {
	out := make([]Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actions[name])
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int { return len(r.order) }

// Invoke runs the named action. Unknown names are the host's rejection, so
// the error return is for hosts to translate (MCP tool-not-found, HTTP 404);
// it never reaches an action handler.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (Response, error) {
	a, ok := r.actions[name]
	if !ok {
		return Response{}, fmt.Errorf("unknown action %q", name)
	}
	return safeInvoke(ctx, a, args), nil
}

// safeInvoke is the outermost action boundary: a panicking handler is
// converted into a generic error envelope instead of crashing the host.
func safeInvoke(ctx context.Context, a Action, args map[string]any) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			resp = Failure(KindInternal, fmt.Sprintf("action %q: unexpected failure: %v", a.Name, p))
		}
	}()
	return a.Handler(ctx, args)
}

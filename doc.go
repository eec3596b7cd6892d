/*
Package workbench provides the core contracts for building workspace-sandboxed
action collections: sets of named, independently invocable operations that an
agent host (MCP or HTTP) exposes as tools.

# Concept

A Collection bundles related actions (spreadsheet extraction, file download,
MIME detection) behind one workspace: a trusted root directory that every
relative file argument resolves against and that no write may escape. Actions
are declared in an explicit registration table and return a uniform Response
envelope that is either a success payload or a classified error, never both.

# Usage

Concrete collections embed Base for the shared sandbox and logger, declare
their actions, and are assembled into a Registry which the serving adapters
(pkg/adapters/mcp, pkg/adapters/http) expose to the host:

	cfg := workbench.Config{Name: "agent-tools", Transport: workbench.TransportStdio}
	col, err := download.NewCollection(cfg)
	if err != nil {
		log.Fatal(err)
	}
	reg, err := workbench.NewRegistry(col)
	if err != nil {
		log.Fatal(err)
	}
	resp, err := reg.Invoke(ctx, "download_file", args)
*/
package workbench

// Package config loads and validates devflow.toml, the declarative policy
// file that drives every dwf invocation.
//
// Loading is strict: any key outside the schema fails the load, and the
// first validation error aborts with a typed ConfigError. There is no
// partial acceptance.
//
// # Basic Usage
//
//	cfg, err := config.Load("devflow.toml")
//	if err != nil {
//	    return err
//	}
//	for _, entry := range cfg.Targets["pr"] {
//	    fmt.Println(entry)
//	}
//
// # Schema
//
// Top-level tables: project, runtime, container, targets, extensions.
//
//	[project]
//	name = "widget"
//	stack = ["rust"]
//
//	[runtime]
//	profile = "auto"          # host | container | auto
//
//	[container]               # required when profile is "container"
//	engine = "docker"         # docker | podman | auto
//	image = "ghcr.io/acme/widget-ci"
//
//	[targets]
//	pr = ["fmt:check", "lint:static", "test:unit"]
//
//	[extensions.rust]
//	source = "builtin"        # builtin | path | subprocess | custom
//	required = true
package config

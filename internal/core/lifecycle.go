package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// Configurable is implemented by modules that accept a YAML section under
// `modules.<id>`. Configure runs right after New and before Provision.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner is implemented by modules that need the AppContext: resolving
// settings, registering services, building internal state.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator is implemented by modules that can check their configuration.
// Validate runs after Provision and must not have side effects.
type Validator interface {
	Validate() error
}

// Starter is implemented by modules that run background work such as
// listeners or schedulers. Start is called once every module is validated.
type Starter interface {
	Start() error
}

// Stopper is implemented by modules holding resources. Stop is called in
// reverse start order during shutdown.
type Stopper interface {
	Stop(ctx context.Context) error
}

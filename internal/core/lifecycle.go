package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// Configurable modules receive their raw YAML config section between
// construction and Provision. Decoding and defaulting belong here.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner modules acquire their resources here: creating
// directories, opening files and database handles. Runs after Configure.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator modules confirm after provisioning that they are usable.
// Validate must not mutate anything.
type Validator interface {
	Validate() error
}

// Stopper modules release their resources during shutdown. Stop runs in
// reverse load order.
type Stopper interface {
	Stop(ctx context.Context) error
}

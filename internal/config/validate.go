package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidbits-ai/tidbits/internal/core"
)

// Validate checks the structural validity of a Config. It verifies the
// version field, checks the storage selector against the registry, and
// ensures every modules entry references a registered module.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	storage := Resolve(cfg)
	if !strings.HasPrefix(storage, "storage.") {
		errs = append(errs, fmt.Errorf("config: storage %q is not in the storage namespace", storage))
	} else if _, ok := core.GetModule(storage); !ok {
		errs = append(errs, fmt.Errorf("config: unknown storage module %q", storage))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	return errors.Join(errs...)
}

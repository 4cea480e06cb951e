package blocks

import "github.com/blockrt/blockrt/internal/registry"

// RegisterAll installs every built-in block category into r. Called
// once when an engine is constructed, before any program is loaded.
func RegisterAll(r *registry.Registry) error {
	for _, register := range []func(*registry.Registry) error{
		RegisterControl,
		RegisterData,
		RegisterOperators,
		RegisterEvents,
	} {
		if err := register(r); err != nil {
			return err
		}
	}
	return nil
}

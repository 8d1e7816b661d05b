// Package loader registers feature modules on the HTTP application.
//
// A feature bundles its models, service, and routes behind the Feature
// interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The server command registers each feature with a Manager and calls
// LoadAll once the shared middleware is in place. Disabled features are
// skipped; a Load error aborts startup with the feature's name in the
// message.
package loader

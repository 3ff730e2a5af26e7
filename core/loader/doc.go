// Package loader mounts features on the Fiber app.
//
// A feature bundles a service with its HTTP handler and implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The start command registers 'reconciliation' and 'integrity' with a Manager
// and calls LoadAll once the middleware is in place. Disabled features are
// skipped.
package loader

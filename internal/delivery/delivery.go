// Package delivery defines the outer adapters that expose the use cases.
package delivery

import "context"

// Delivery is a long-running adapter started by main.
type Delivery interface {
	Serve(ctx context.Context) error
}

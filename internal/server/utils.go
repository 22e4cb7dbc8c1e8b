package server

import (
	"fmt"
	"runtime/debug"

	"github.com/tliron/glsp"
)

// guard converts a panic in a request handler into an error response.
func guard[P any, R any](
	method string,
	handle func(*glsp.Context, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(context *glsp.Context, params P) (result R, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic in %s: %v\n%s", method, r, debug.Stack())
				err = fmt.Errorf("%s: internal error: %v", method, r)
			}
		}()
		return handle(context, params)
	}
}

// guardNotification is guard for handlers without a result.
func guardNotification[P any](
	method string,
	handle func(*glsp.Context, P) error,
) func(*glsp.Context, P) error {
	return func(context *glsp.Context, params P) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic in %s: %v\n%s", method, r, debug.Stack())
				err = fmt.Errorf("%s: internal error: %v", method, r)
			}
		}()
		return handle(context, params)
	}
}

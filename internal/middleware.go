package internal

import (
	"net/http"

	"github.com/rvndudz/scheduled-music-console/internal/ctxhelper"
	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"
)

// EnsureOperatorLoggedIn is a middleware that checks if there is a valid operator session for the current call
func EnsureOperatorLoggedIn(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		user := ctxhelper.User(ctx)
		if user == nil {
			// Nobody logged in
			return nil, MakeError(
				http.StatusForbidden,
				ErrCodeNotLoggedIn,
				"This function needs a logged-in operator",
			)
		}
		return next(ctx, request)
	}
}

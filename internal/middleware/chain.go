package middleware

import "net/http"

// Chain applies middleware in the order given: the first one runs outermost.
//
//	handler := Chain(mux,
//	    RequestLogging,     // first
//	    Config(cfg),
//	    AuthMiddleware(a),
//	    CSRFProtection,     // needs the auth method
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Package server hosts the short-lived callback listener behind `nowplaying auth`.
//
// # Routing
//
// [BasicRouter] registers "METHOD /path" patterns on an [http.ServeMux], so a request with the wrong method gets a
// 405 from the mux. [Middleware] added with Use wraps every route registered after it; the first one added is the
// outermost. [Logging] records each request at debug level, or warn when the status is 400 or above.
//
// # OAuth callback
//
// [OAuthHandler] serves two routes. `/login` redirects to the Spotify consent page and `/callback` checks the state
// parameter, exchanges the code and publishes an [OAuthResult] on a buffered channel. Only the first callback is
// processed; later ones get a 400.
//
// [Serve] binds the listener, reports the bound address and shuts down gracefully once its context ends.
package server

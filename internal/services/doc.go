// Package services talks to the Spotify Web API on behalf of the now-playing display.
//
// # Token Lifecycle
//
// [TokenManager] owns the access token. It exchanges the configured refresh token for a short-lived access
// token through [oauth2.Config.TokenSource] with client credentials in a Basic header, and caches the result until
// now + expires_in. Concurrent [TokenManager.Authorize] calls made while an exchange is running share that exchange
// (singleflight). Changing the client id, client secret or refresh token in the [shared.ConfigSource] drops the cached
// access token; the next Authorize call performs the exchange.
//
// # Now Playing
//
// [SpotifyClient] queries /me/player/currently-playing with the Bearer header from its [Authorizer] and converts the
// response into a [models.Snapshot]. It refuses to send anything but a Bearer header.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuthExchange] : token endpoint unreachable or credentials rejected
//   - [shared.ErrMissingCredentials] : client id, secret or refresh token not configured (wrapped in ErrAuthExchange)
//   - [shared.ErrPlaybackQuery] : network error or non-2xx from the player endpoint
//   - [shared.ErrMalformedResponse] : response body missing expected fields
//   - [shared.ErrNothingPlaying] : 204 No Content, or an item-less ad/unknown response
//   - [shared.ErrTimeout] : wrapped alongside the category error when a request hit its deadline
package services

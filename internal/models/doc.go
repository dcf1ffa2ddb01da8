// Package models defines the values shared between the playback components.
//
//   - [Snapshot] : an immutable record of the remote playback state, replaced wholesale by each poll
//   - [AccessToken] : the cached credential used for data requests
//
// Neither type is persisted.
package models

// Package ui implements the now-playing terminal view using bubbletea's Elm architecture.
//
// The [Model] never talks to the network. A frame clock ([tea.Tick] at the configured frame rate) pulls the poller's
// latest snapshot, folds the elapsed time into a [playback.Estimator] and resolves the cover through an
// [assets.Cache], so rendering stays smooth between the once-a-second polls.
//
// Status events from the poller arrive on a channel and are shown below the progress bar. Key bindings (p, q) are
// listed via charmbracelet/bubbles/help.
package ui

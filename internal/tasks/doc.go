// Package tasks runs the background work behind the now-playing display.
//
// # Scheduling
//
// [Periodic] is a cancellable timer: [Periodic.Start] runs its function immediately and then on every interval until
// [Periodic.Stop]. Stop cancels the context handed to the function and waits for the loop to exit, so a stopped
// Periodic never fires again.
//
// # Polling
//
// [Poller] drives one [Periodic]. Each tick authorizes through [services.Authorizer], queries the player endpoint and
// publishes the resulting [models.Snapshot] atomically; any failure publishes nil ("nothing is playing"). A tick that
// finds the previous poll still running is skipped, so requests never overlap.
//
//  1. [Poller.Pause] stops the timer, cancels the in-flight request and discards its completion
//  2. [Poller.Resume] restarts the timer; like Start it polls immediately and then every interval
//
// # Progress Reporting
//
// The optional updates channel receives a [ProgressUpdate] per phase. Updates use select with default to prevent blocking.
package tasks

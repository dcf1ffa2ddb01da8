// package assets resolves album art for the now-playing view.
//
// A [Cache] remembers the last cover it was asked for and loads a new one in the background only when the URL
// changes, handing back the previous cover until the replacement is decoded. Two static images, the paused overlay
// and the "no track" fallback, are embedded and decoded once.
package assets

// package playback extrapolates playback progress between polls.
//
// The [Estimator] is fed the latest published snapshot once per rendered frame together with the frame's elapsed
// time. A snapshot it has not seen before resets the estimate to the server-reported position; otherwise a playing
// track advances in proportion to the track duration so that a full bar corresponds to the whole track.
package playback

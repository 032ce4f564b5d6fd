// Package tts reads a Markdown document aloud, one segment at a time.
//
// A Controller owns at most one playback session. Each session fetches
// synthesized speech for a segment, decodes it and plays it to the end
// before moving on. Stopping is cooperative: the session checks its
// cancellation token before every fetch and before every playback start, so
// no audio starts after a stop request even when in-flight work completes
// later.
package tts

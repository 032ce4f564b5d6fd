// Package audio turns synthesized speech payloads into playable buffers and
// plays them on an output device. Playback uses oto/v3; a WAV file output is
// available for headless machines.
package audio

// Package cache keeps synthesized speech so that reading a briefing twice
// does not spend API quota twice. A small in-memory LRU sits in front of a
// zstd-compressed disk store that survives restarts.
package cache

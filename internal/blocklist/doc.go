// Package blocklist implements the core of hostmerge: normalizing
// heterogeneous block-list lines into canonical entries, tracking per-source
// failure health, and merging concurrent fetch results into one deduplicated
// set with per-source accounting.
package blocklist

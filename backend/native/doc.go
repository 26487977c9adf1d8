// Package native lowers blit commands onto a gogpu/wgpu HAL device.
//
// A Device wraps a hal.Device and its hal.Queue. Each blit encoder records
// into one hal.CommandEncoder and submits it when encoding ends, waiting on
// a fence so that scratch resources can be released.
//
// Texture slice clears are expressed as a copy from a zeroed scratch buffer,
// since HAL command encoders have no texture clear outside render passes.
// Scratch buffers are pooled per device by size; a buffer evicted from the
// pool is destroyed only after the encoder that may use it has been waited
// on. A Device should have one open blit encoder at a time.
package native

// Package texel answers format-table questions for copy encoding: texel block
// byte sizes and dimensions, aspect-specific formats, which aspects may be
// copied in which direction, mip-level extents and row byte counts.
//
// All functions are pure and operate on gputypes values. Block sizes are
// reported as a [Size], which carries an overflow bit instead of a sentinel:
// formats that have no copyable block (Depth24Plus, a combined depth-stencil
// format addressed with TextureAspectAll, Undefined) yield an overflowed Size,
// and any computation depending on it must stop.
package texel

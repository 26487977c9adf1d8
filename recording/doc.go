// Package recording captures blit commands so that a copy can be planned in
// full before anything reaches a backend.
//
// A copy operation may expand into many transfers and texture clears. The
// planner records them into a Recorder; if planning fails halfway (for
// example because an offset overflows) the Recording is dropped and the
// backend never sees a partial operation. Otherwise the Recording is played
// back onto a backend.BlitEncoder.
//
// # Example
//
//	rec := recording.NewRecorder()
//	rec.ClearTexture(tex, tex.Backing(), 0, 0)
//	rec.CopyBufferToTexture(copy)
//	r := rec.FinishRecording()
//
//	if err := r.Playback(enc); err != nil {
//		return err
//	}
package recording

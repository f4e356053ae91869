// Package analysis inspects recorded runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: bounce rate of a dot from its
//     sampled height
//   - [HeightSeries]: height above the floor of one dot across frames
//   - [GeneratePhasePortrait]: height against vertical speed
//
// A dot that has come to rest has no dominant frequency:
//
//	heights := analysis.HeightSeries(frames, "a", meta.FloorY)
//	hz, err := analysis.DominantFrequency(heights, meta.Dt)
//	if errors.Is(err, analysis.ErrFlat) {
//	    // resting
//	}
package analysis

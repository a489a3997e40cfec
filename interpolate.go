package groundcover

// bilinear returns the weighted sum of four neighboring samples, where (dx, dy)
// is the offset from s00 toward s11 in pixels.
func bilinear(s00, s10, s01, s11 RasterSample, dx, dy float64) RasterSample {
	var result RasterSample
	for c := range result {
		result[c] = 0 +
			s00[c]*(1-dx)*(1-dy) +
			s10[c]*dx*(1-dy) +
			s01[c]*(1-dx)*dy +
			s11[c]*dx*dy
	}
	return result
}

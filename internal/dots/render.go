package dots

// RenderSync places every body's element at its top-left corner, except the
// body under manual control.
func RenderSync(bodies []*Body, s Surface, skip ID) {
	for _, b := range bodies {
		if skip != "" && b.ID == skip {
			continue
		}
		s.Place(b.ID, b.TopLeft())
	}
}

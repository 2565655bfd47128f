package preview

// projection maps a layout's data-space coordinates onto a fixed
// pixel canvas, preserving aspect ratio and leaving a margin so nodes
// near the bounding box edge are never clipped.
type projection struct {
	minX, minY   float64
	scale        float64
	width, height int
	margin       int
}

func newProjection(minX, minY, maxX, maxY float64, width, height, margin int) projection {
	spanX := maxX - minX
	spanY := maxY - minY
	availW := float64(width - 2*margin)
	availH := float64(height - 2*margin)
	scale := availW / spanX
	if alt := availH / spanY; alt < scale {
		scale = alt
	}
	if scale <= 0 {
		scale = 1
	}
	return projection{minX: minX, minY: minY, scale: scale, width: width, height: height, margin: margin}
}

func (p projection) project(pt Point) (int, int) {
	x := p.margin + int((pt.X-p.minX)*p.scale)
	y := p.height - p.margin - int((pt.Y-p.minY)*p.scale)
	return x, y
}

func (p projection) centroidPixel() (int, int) {
	return p.width / 2, p.height / 2
}

// projectVector draws an axis vector from the canvas centroid,
// scaling it to a fixed fraction of the canvas so it stays visible
// regardless of the layout's own coordinate magnitude.
func (p projection) projectVector(vx, vy float64) (int, int) {
	cx, cy := p.centroidPixel()
	length := float64(minInt(p.width, p.height)) * 0.35
	return cx + int(vx*length), cy - int(vy*length)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

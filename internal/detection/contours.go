package detection

import (
	"fmt"
	"image"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Moore neighborhood offsets in clockwise order, starting from the western
// neighbor. Consecutive entries are adjacent ring positions, which the
// boundary tracer relies on when it records backtrack pixels.
var (
	mooreDX = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	mooreDY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

// dirIndex maps the offset between two adjacent pixels to its position in the
// Moore neighborhood ring.
func dirIndex(dx, dy int) int {
	for i := 0; i < 8; i++ {
		if mooreDX[i] == dx && mooreDY[i] == dy {
			return i
		}
	}
	return 0
}

// fillComponent marks the connected foreground region containing seed as
// visited and returns its bounding extents (inclusive).
//
// Uses a stack-based flood fill (not recursive) to avoid stack overflow on
// large regions. Connectivity is 8-connected, so diagonal runs of ink stay in
// one component.
func fillComponent(mask *image.Gray, visited []bool, seed Point) (minX, minY, maxX, maxY int) {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	minX, minY, maxX, maxY = seed.X, seed.Y, seed.X, seed.Y

	stack := []Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y*width+p.X] || mask.Pix[p.Y*mask.Stride+p.X] == 0 {
			continue
		}

		visited[p.Y*width+p.X] = true
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return minX, minY, maxX, maxY
}

// traceBoundary walks the external contour of the foreground region whose
// topmost-leftmost pixel is start, using Moore-neighbor tracing.
//
// The walk proceeds clockwise and terminates with Jacob's stopping criterion:
// the trace is complete when the start pixel is re-entered from the same
// direction as the initial entry. Holes inside the region are never visited,
// so only the external contour is produced.
//
// start must be the first pixel of its region in row-major scan order; the
// tracer seeds its backtrack with the (background) pixel immediately to the
// west, which that ordering guarantees.
//
// Returns an error if the contour fails to close within the step limit,
// which indicates a corrupt mask rather than a recoverable condition.
func traceBoundary(mask *image.Gray, start Point) ([]Point, error) {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	foreground := func(x, y int) bool {
		return x >= 0 && x < width && y >= 0 && y < height && mask.Pix[y*mask.Stride+x] != 0
	}

	boundary := []Point{start}
	startBack := Point{X: start.X - 1, Y: start.Y}
	cur, back := start, startBack

	maxSteps := 4 * (width*height + 4)
	for step := 0; ; step++ {
		if step > maxSteps {
			return nil, fmt.Errorf("contour at (%d,%d) did not close within %d steps", start.X, start.Y, maxSteps)
		}

		d0 := dirIndex(back.X-cur.X, back.Y-cur.Y)
		prev := back
		advanced := false
		for i := 1; i <= 8; i++ {
			d := (d0 + i) % 8
			n := Point{X: cur.X + mooreDX[d], Y: cur.Y + mooreDY[d]}
			if foreground(n.X, n.Y) {
				back = prev
				cur = n
				advanced = true
				break
			}
			prev = n
		}
		if !advanced {
			// Isolated single pixel has no neighbors to walk.
			break
		}
		if cur == start && back == startBack {
			break
		}
		boundary = append(boundary, cur)
	}
	return boundary, nil
}

// contourArea computes the area enclosed by a closed contour using the
// shoelace formula over the boundary polygon.
//
// The result matches the pixel-center polygon convention: a filled axis-
// aligned square of side n encloses (n-1)^2, not n^2. Contours with fewer
// than three points enclose nothing.
func contourArea(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum int
	for i := range points {
		j := (i + 1) % len(points)
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// contourPerimeter returns the length of the closed polyline through the
// contour points, including the closing segment back to the first point.
func contourPerimeter(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var length float64
	for i := range points {
		j := (i + 1) % len(points)
		length += math.Hypot(float64(points[j].X-points[i].X), float64(points[j].Y-points[i].Y))
	}
	return length
}

// approxPolygon simplifies a closed contour to its dominant vertices using
// Douglas-Peucker reduction with the given tolerance.
//
// The closed curve is split into two open chains at the point farthest from
// the first point, each chain is simplified independently, and the halves are
// rejoined without duplicating the shared endpoints. Every original point
// lies within epsilon of the simplified polygon.
func approxPolygon(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}

	far := 0
	var maxDist float64
	for i, p := range points {
		d := math.Hypot(float64(p.X-points[0].X), float64(p.Y-points[0].Y))
		if d > maxDist {
			far = i
			maxDist = d
		}
	}
	if far == 0 {
		return []Point{points[0]}
	}

	head := append([]Point(nil), points[:far+1]...)
	tail := make([]Point, 0, len(points)-far+1)
	tail = append(tail, points[far:]...)
	tail = append(tail, points[0])

	first := simplifyChain(head, epsilon)
	second := simplifyChain(tail, epsilon)

	out := make([]Point, 0, len(first)+len(second)-2)
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// simplifyChain is the standard recursive Douglas-Peucker pass over an open
// polyline: keep the endpoints, recurse on the farthest interior point while
// it deviates more than epsilon from the chord.
func simplifyChain(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}

	a := points[0]
	b := points[len(points)-1]

	idx := 0
	var maxDist float64
	for i := 1; i < len(points)-1; i++ {
		if d := segmentDistance(points[i], a, b); d > maxDist {
			idx = i
			maxDist = d
		}
	}

	if maxDist <= epsilon {
		return []Point{a, b}
	}

	left := simplifyChain(points[:idx+1], epsilon)
	right := simplifyChain(points[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance returns the distance from p to the line segment a-b.
// Degenerate segments (a == b) fall back to point distance.
func segmentDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	if dx == 0 && dy == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}

	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	px := float64(a.X) + t*dx
	py := float64(a.Y) + t*dy
	return math.Hypot(float64(p.X)-px, float64(p.Y)-py)
}

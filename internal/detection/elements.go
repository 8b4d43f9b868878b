package detection

import (
	"errors"
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrDetection indicates that contour or geometry processing failed.
//
// Detection either succeeds for the whole mask or fails as a unit; no partial
// element list is ever returned alongside this error.
var ErrDetection = errors.New("contour processing failure")

const (
	// minContourArea is the noise floor: contours enclosing less than this
	// many square pixels never produce an element.
	minContourArea = 100

	// confidenceNorm converts enclosed area into a confidence score
	// (area / confidenceNorm, capped at 1.0).
	confidenceNorm = 10000

	// approxTolerance is the Douglas-Peucker tolerance as a fraction of the
	// contour perimeter.
	approxTolerance = 0.04

	// fineApproxTolerance is the tighter tolerance used to separate curved
	// boundaries from straight-edged polygons when the standard pass lands
	// in the ambiguous vertex range.
	fineApproxTolerance = 0.01
)

// Kind enumerates the shape categories a contour can classify into.
type Kind string

// Shape kinds, from most to least specific. KindShape is the fallback for
// irregular polygons that match no other category.
const (
	KindBox       Kind = "box"       // 4 vertices, near-square aspect ratio
	KindRectangle Kind = "rectangle" // 4 vertices, elongated
	KindTriangle  Kind = "triangle"  // 3 vertices
	KindCircle    Kind = "circle"    // more than 8 vertices
	KindShape     Kind = "shape"     // anything else
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// DiagramElement is one detected geometric shape.
//
// Elements are immutable after detection except for the Relationships slice,
// which Annotate appends to. Relationships is always initialized, so
// consumers can range over it without a nil check.
type DiagramElement struct {
	// Kind is the classified shape category.
	Kind Kind `json:"kind"`

	// Confidence is the enclosed contour area relative to the normalization
	// constant, capped at 1.0.
	Confidence float64 `json:"confidence"`

	// BBox is the axis-aligned bounding box of the contour.
	BBox Bounds `json:"bbox"`

	// FillColor is the hex color sampled at the center of the bounding box.
	// Empty when no source image was supplied or sampling failed.
	FillColor string `json:"fill_color,omitempty"`

	// Relationships holds the spatial relation statements in which this
	// element is the subject. Populated by Annotate; may be empty.
	Relationships []string `json:"relationships"`
}

// Detect extracts diagram elements from a binary mask.
//
// Parameters:
//   - mask: Binary mask from imaging.Binarize, with foreground ink set to a
//     non-zero value and bounds anchored at (0,0).
//   - src: Optional original image used only for fill-color sampling. Pass
//     nil to skip color sampling.
//
// Returns:
//   - []DiagramElement: Detected elements in mask scan order (row-major
//     discovery order of their topmost-leftmost pixel). The order is stable
//     and reproducible for a given mask.
//   - error: Non-nil (wrapping ErrDetection) if contour processing fails, in
//     which case no elements are returned.
//
// # Algorithm
//
//  1. Flood-fill connected foreground regions in scan order
//  2. Trace each region's external contour; holes are ignored
//  3. Discard contours enclosing less than 100 square pixels
//  4. Approximate the contour as a polygon with tolerance 4% of its
//     perimeter, re-checking ambiguous 5 to 8 vertex results at a finer
//     tolerance to expose curved boundaries
//  5. Classify by vertex count and bounding-box aspect ratio
func Detect(mask *image.Gray, src image.Image) ([]DiagramElement, error) {
	if mask == nil {
		return nil, fmt.Errorf("%w: nil mask", ErrDetection)
	}

	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	visited := make([]bool, width*height)
	elements := make([]DiagramElement, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.Pix[y*mask.Stride+x] == 0 || visited[y*width+x] {
				continue
			}

			seed := Point{X: x, Y: y}
			minX, minY, maxX, maxY := fillComponent(mask, visited, seed)

			boundary, err := traceBoundary(mask, seed)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDetection, err)
			}

			area := contourArea(boundary)
			if area < minContourArea {
				continue
			}

			w := maxX - minX + 1
			h := maxY - minY + 1
			vertices := countVertices(boundary, contourPerimeter(boundary))

			elem := DiagramElement{
				Kind:          classifyKind(vertices, w, h),
				Confidence:    math.Min(area/confidenceNorm, 1.0),
				BBox:          Bounds{X1: minX, Y1: minY, X2: minX + w, Y2: minY + h},
				Relationships: make([]string, 0),
			}
			if src != nil {
				elem.FillColor = sampleFillColor(src, (minX+maxX)/2, (minY+maxY)/2)
			}
			elements = append(elements, elem)
		}
	}
	return elements, nil
}

// countVertices returns the vertex count used for shape classification.
//
// The boundary is first simplified at the standard tolerance. Counts in the
// 5 to 8 range are ambiguous: straight-edged polygons settle there, but so
// do circles, whose 45-degree arcs deviate from their chords by roughly
// 1.2% of the perimeter and stop the 4% simplification early at exactly 8
// vertices. Re-approximating at the finer tolerance separates the two
// cases: a curved boundary keeps splitting and exceeds 8 vertices, while a
// true polygon's edges are straight at any tolerance and keep their count.
func countVertices(boundary []Point, perimeter float64) int {
	vertices := len(approxPolygon(boundary, approxTolerance*perimeter))
	if vertices >= 5 && vertices <= 8 {
		if fine := len(approxPolygon(boundary, fineApproxTolerance*perimeter)); fine > 8 {
			vertices = fine
		}
	}
	return vertices
}

// classifyKind maps an approximated polygon's vertex count and bounding-box
// aspect ratio to a shape kind.
//
// Four-vertex contours with an aspect ratio within [0.95, 1.05] are boxes;
// other four-vertex contours are rectangles. Three vertices make a triangle,
// more than eight make a circle, and everything else falls back to the
// generic shape kind.
func classifyKind(vertices, width, height int) Kind {
	switch {
	case vertices == 4:
		if height > 0 {
			ratio := float64(width) / float64(height)
			if ratio >= 0.95 && ratio <= 1.05 {
				return KindBox
			}
		}
		return KindRectangle
	case vertices == 3:
		return KindTriangle
	case vertices > 8:
		return KindCircle
	default:
		return KindShape
	}
}

// sampleFillColor returns the hex color (#rrggbb) of the source pixel at the
// given mask coordinate, or "" if the coordinate falls outside the image or
// the pixel is fully transparent.
func sampleFillColor(img image.Image, x, y int) string {
	bounds := img.Bounds()
	px := bounds.Min.X + x
	py := bounds.Min.Y + y
	if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
		return ""
	}

	c, ok := colorful.MakeColor(img.At(px, py))
	if !ok {
		return ""
	}
	return c.Hex()
}

package detection

import "fmt"

// Annotate infers pairwise directional relationships between detected
// elements from their bounding-box geometry.
//
// Every unordered pair of distinct elements is considered exactly once, in
// index order (i < j), so mirrored statements are never produced. For a pair
// (e1, e2):
//
//   - If the boxes overlap horizontally and e1 sits strictly above or below
//     e2, an "is above" / "is below" statement is emitted.
//   - If the boxes overlap vertically and e1 sits strictly left or right of
//     e2, an "is left of" / "is right of" statement is emitted.
//
// Boxes that overlap on both axes, or that touch without a strict gap on the
// tested axis, contribute no statement for that test. Statements are appended
// to the first element of the pair and collected into the returned slice in
// pair-enumeration order, which is the order the description composer renders
// them in.
//
// Annotate mutates only the Relationships field of the elements; everything
// else is read-only. The returned slice is never nil.
func Annotate(elements []DiagramElement) []string {
	statements := make([]string, 0)

	for i := range elements {
		for j := i + 1; j < len(elements); j++ {
			e1 := &elements[i]
			e2 := &elements[j]

			// Horizontal overlap: the boxes share a vertical band.
			if e1.BBox.X1 < e2.BBox.X2 && e2.BBox.X1 < e1.BBox.X2 {
				if e1.BBox.Y2 < e2.BBox.Y1 {
					statements = append(statements, relate(e1, e2, "above"))
				} else if e1.BBox.Y1 > e2.BBox.Y2 {
					statements = append(statements, relate(e1, e2, "below"))
				}
			}

			// Vertical overlap: the boxes share a horizontal band.
			if e1.BBox.Y1 < e2.BBox.Y2 && e2.BBox.Y1 < e1.BBox.Y2 {
				if e1.BBox.X2 < e2.BBox.X1 {
					statements = append(statements, relate(e1, e2, "left of"))
				} else if e1.BBox.X1 > e2.BBox.X2 {
					statements = append(statements, relate(e1, e2, "right of"))
				}
			}
		}
	}
	return statements
}

// relate builds a relation statement and records it on the subject element.
func relate(e1, e2 *DiagramElement, direction string) string {
	s := fmt.Sprintf("%s is %s %s", e1.Kind, direction, e2.Kind)
	e1.Relationships = append(e1.Relationships, s)
	return s
}

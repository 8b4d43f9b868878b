package describe

import (
	"fmt"
	"strings"

	"github.com/pauloheck/diagram-tools/internal/detection"
	"github.com/pauloheck/diagram-tools/internal/imaging"
)

// Status indicates the outcome of processing a single diagram.
type Status string

// Processing outcomes recorded in document metadata.
const (
	StatusSuccess    Status = "success"
	StatusNoElements Status = "no_elements_detected"
	StatusError      Status = "error"
)

// noElementsContent is the fixed document body for diagrams in which nothing
// was detected.
const noElementsContent = "No elements were detected in the diagram."

// Metadata carries the structured attributes of an analysis document.
type Metadata struct {
	// Source is the path (or other identifier) of the analyzed image.
	Source string `json:"source"`

	// Kind is always "diagram" for documents produced by this package.
	Kind string `json:"kind"`

	// ElementCount is the number of detected elements.
	ElementCount int `json:"element_count"`

	// ElementKinds lists the distinct kinds present, comma separated, in
	// first-seen order.
	ElementKinds string `json:"element_kinds"`

	// Status records the processing outcome.
	Status Status `json:"status"`

	// ErrorMessage holds the failure detail when Status is StatusError.
	ErrorMessage string `json:"error_message,omitempty"`
}

// AnalysisDocument is the pipeline's output unit: a composed description plus
// metadata. Documents are never mutated after creation.
type AnalysisDocument struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Compose builds an analysis document from detected elements and their
// relation statements.
//
// The description starts with a header line giving the total element count,
// followed by one line per distinct kind with its count (kinds in first-seen
// order), followed by every relation statement in the order Annotate produced
// them. An empty element list yields a fixed no-elements document instead.
//
// Composition is deterministic: identical inputs always produce an identical
// document.
func Compose(source string, elements []detection.DiagramElement, relations []string) *AnalysisDocument {
	if len(elements) == 0 {
		return &AnalysisDocument{
			Content: noElementsContent,
			Metadata: Metadata{
				Source:       source,
				Kind:         "diagram",
				ElementCount: 0,
				ElementKinds: "",
				Status:       StatusNoElements,
			},
		}
	}

	// Distinct kinds in first-seen order, with per-kind counts.
	kinds := make([]detection.Kind, 0)
	counts := make(map[detection.Kind]int)
	for _, e := range elements {
		if counts[e.Kind] == 0 {
			kinds = append(kinds, e.Kind)
		}
		counts[e.Kind]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Diagram containing %d elements:\n", len(elements))
	for _, k := range kinds {
		fmt.Fprintf(&b, "- %d %s(s)\n", counts[k], k)
	}
	for _, r := range relations {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = string(k)
	}

	return &AnalysisDocument{
		Content: b.String(),
		Metadata: Metadata{
			Source:       source,
			Kind:         "diagram",
			ElementCount: len(elements),
			ElementKinds: strings.Join(kindNames, ", "),
			Status:       StatusSuccess,
		},
	}
}

// ProcessDiagram runs the full structural-analysis pipeline on one image.
//
// The image is loaded, binarized, scanned for elements, and annotated with
// spatial relations; the result is composed into a document. ProcessDiagram
// never fails: decode and detection errors become a document with
// StatusError, the error text as content, and the detail recorded in
// metadata.
func ProcessDiagram(path string) *AnalysisDocument {
	img, err := imaging.Load(path)
	if err != nil {
		return errorDocument(path, err)
	}

	mask := imaging.Binarize(img)
	elements, err := detection.Detect(mask, img)
	if err != nil {
		return errorDocument(path, err)
	}

	relations := detection.Annotate(elements)
	return Compose(path, elements, relations)
}

// errorDocument wraps a pipeline failure in an error-status document so that
// callers always receive a document, never a raw error.
func errorDocument(source string, err error) *AnalysisDocument {
	msg := fmt.Sprintf("Failed to process diagram: %v", err)
	return &AnalysisDocument{
		Content: msg,
		Metadata: Metadata{
			Source:       source,
			Kind:         "diagram",
			ElementCount: 0,
			ElementKinds: "",
			Status:       StatusError,
			ErrorMessage: err.Error(),
		},
	}
}

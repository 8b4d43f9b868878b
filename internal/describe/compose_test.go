package describe

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pauloheck/diagram-tools/internal/detection"
)

func elem(kind detection.Kind) detection.DiagramElement {
	return detection.DiagramElement{
		Kind:          kind,
		Relationships: make([]string, 0),
	}
}

func TestCompose_NoElements(t *testing.T) {
	doc := Compose("diagram.png", nil, nil)

	if doc.Metadata.Status != StatusNoElements {
		t.Errorf("status: got %s, want %s", doc.Metadata.Status, StatusNoElements)
	}
	if doc.Metadata.ElementCount != 0 {
		t.Errorf("element count: got %d, want 0", doc.Metadata.ElementCount)
	}
	if doc.Metadata.ElementKinds != "" {
		t.Errorf("element kinds: got %q, want empty", doc.Metadata.ElementKinds)
	}
	if doc.Content != noElementsContent {
		t.Errorf("content: got %q, want %q", doc.Content, noElementsContent)
	}
	if doc.Metadata.Source != "diagram.png" {
		t.Errorf("source: got %q, want diagram.png", doc.Metadata.Source)
	}
	if doc.Metadata.Kind != "diagram" {
		t.Errorf("metadata kind: got %q, want diagram", doc.Metadata.Kind)
	}
}

func TestCompose_CountsAndRelations(t *testing.T) {
	elements := []detection.DiagramElement{
		elem(detection.KindBox),
		elem(detection.KindCircle),
		elem(detection.KindBox),
	}
	relations := []string{"box is above circle"}

	doc := Compose("d.png", elements, relations)

	want := "Diagram containing 3 elements:\n" +
		"- 2 box(s)\n" +
		"- 1 circle(s)\n" +
		"- box is above circle\n"
	if doc.Content != want {
		t.Errorf("content:\ngot:  %q\nwant: %q", doc.Content, want)
	}
	if doc.Metadata.Status != StatusSuccess {
		t.Errorf("status: got %s, want %s", doc.Metadata.Status, StatusSuccess)
	}
	if doc.Metadata.ElementCount != 3 {
		t.Errorf("element count: got %d, want 3", doc.Metadata.ElementCount)
	}
	if doc.Metadata.ElementKinds != "box, circle" {
		t.Errorf("element kinds: got %q, want %q", doc.Metadata.ElementKinds, "box, circle")
	}
}

func TestCompose_KindOrderIsFirstSeen(t *testing.T) {
	elements := []detection.DiagramElement{
		elem(detection.KindTriangle),
		elem(detection.KindBox),
		elem(detection.KindTriangle),
	}

	doc := Compose("d.png", elements, nil)

	if doc.Metadata.ElementKinds != "triangle, box" {
		t.Errorf("element kinds: got %q, want %q", doc.Metadata.ElementKinds, "triangle, box")
	}
	if !strings.Contains(doc.Content, "- 2 triangle(s)\n- 1 box(s)\n") {
		t.Errorf("content kind lines out of order:\n%s", doc.Content)
	}
}

func TestProcessDiagram_MissingFile(t *testing.T) {
	doc := ProcessDiagram(filepath.Join(t.TempDir(), "missing.png"))

	if doc.Metadata.Status != StatusError {
		t.Fatalf("status: got %s, want %s", doc.Metadata.Status, StatusError)
	}
	if doc.Metadata.ErrorMessage == "" {
		t.Error("error document must record the failure detail")
	}
	if doc.Metadata.ElementCount != 0 {
		t.Errorf("element count: got %d, want 0", doc.Metadata.ElementCount)
	}
	if !strings.HasPrefix(doc.Content, "Failed to process diagram:") {
		t.Errorf("content should carry the error message, got %q", doc.Content)
	}
}

func writeDiagramPNG(t *testing.T, draw func(*image.RGBA)) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}
	if draw != nil {
		draw(img)
	}

	path := filepath.Join(t.TempDir(), "diagram.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return path
}

func TestProcessDiagram_BlankImage(t *testing.T) {
	path := writeDiagramPNG(t, nil)

	doc := ProcessDiagram(path)

	if doc.Metadata.Status != StatusNoElements {
		t.Errorf("status: got %s, want %s", doc.Metadata.Status, StatusNoElements)
	}
	if doc.Metadata.ElementCount != 0 {
		t.Errorf("element count: got %d, want 0", doc.Metadata.ElementCount)
	}
}

func TestProcessDiagram_SquareEndToEnd(t *testing.T) {
	path := writeDiagramPNG(t, func(img *image.RGBA) {
		for y := 20; y < 60; y++ {
			for x := 20; x < 60; x++ {
				img.Set(x, y, color.Black)
			}
		}
	})

	doc := ProcessDiagram(path)

	if doc.Metadata.Status != StatusSuccess {
		t.Fatalf("status: got %s (content %q), want %s", doc.Metadata.Status, doc.Content, StatusSuccess)
	}
	if doc.Metadata.ElementCount != 1 {
		t.Errorf("element count: got %d, want 1", doc.Metadata.ElementCount)
	}
	if doc.Metadata.ElementKinds != "box" {
		t.Errorf("element kinds: got %q, want box", doc.Metadata.ElementKinds)
	}
	if !strings.HasPrefix(doc.Content, "Diagram containing 1 elements:\n") {
		t.Errorf("unexpected content header: %q", doc.Content)
	}
}

func TestProcessDiagram_Deterministic(t *testing.T) {
	path := writeDiagramPNG(t, func(img *image.RGBA) {
		for y := 10; y < 40; y++ {
			for x := 10; x < 40; x++ {
				img.Set(x, y, color.Black)
			}
		}
		for y := 60; y < 90; y++ {
			for x := 15; x < 35; x++ {
				img.Set(x, y, color.Black)
			}
		}
	})

	first := ProcessDiagram(path)
	second := ProcessDiagram(path)

	if first.Content != second.Content {
		t.Error("ProcessDiagram content differs between runs on identical input")
	}
	if *first != *second {
		t.Error("ProcessDiagram metadata differs between runs on identical input")
	}
}

package vision

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseDetectionsFencedReply(t *testing.T) {
	text := "```json\n[{\"box_2d\":[100,200,300,400],\"label\":\"Black mug\"}]\n```"

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("detections = %d, want 1", len(got))
	}
	d := got[0]
	if d.Label != "Black mug" {
		t.Errorf("label = %q", d.Label)
	}
	if !almostEqual(d.X, 0.2) || !almostEqual(d.Y, 0.1) || !almostEqual(d.W, 0.2) || !almostEqual(d.H, 0.2) {
		t.Errorf("box = {%v %v %v %v}, want {0.2 0.1 0.2 0.2}", d.X, d.Y, d.W, d.H)
	}
}

func TestParseDetectionsBareJSON(t *testing.T) {
	text := `[{"box_2d":[10,20,60,80],"label":"Lamp","category":"lighting","metadata":{"color":"brass"}}]`

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("detections = %d, want 1", len(got))
	}
	d := got[0]
	if d.Category != "lighting" || d.Color != "brass" {
		t.Errorf("detection = %+v", d)
	}
	if !almostEqual(d.X, 0.2) || !almostEqual(d.Y, 0.1) || !almostEqual(d.W, 0.6) || !almostEqual(d.H, 0.5) {
		t.Errorf("box = {%v %v %v %v}", d.X, d.Y, d.W, d.H)
	}
}

func TestParseDetectionsProseFallback(t *testing.T) {
	text := `Here are the items I found:
[{"box_2d":[0,0,50,50],"label":"Rug"}]
Let me know if you need more detail.`

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Rug" {
		t.Fatalf("detections = %+v, want one Rug", got)
	}
}

func TestParseDetectionsUnreadable(t *testing.T) {
	for _, text := range []string{
		"I could not find any items in this image.",
		"```json\nnot json at all\n```",
		"",
	} {
		if _, err := ParseDetections(text, 100); !errors.Is(err, ErrResponseFormat) {
			t.Errorf("ParseDetections(%q) err = %v, want ErrResponseFormat", text, err)
		}
	}
}

func TestParseDetectionsDropsMalformedEntries(t *testing.T) {
	text := `[
		{"box_2d":[10,10,90,90],"label":"Desk"},
		{"label":"No box"},
		{"box_2d":[10,10,90],"label":"Short box"},
		{"box_2d":[10,10,90,90],"label":""}
	]`

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Desk" {
		t.Fatalf("detections = %+v, want only Desk", got)
	}
}

func TestParseDetectionsDropsTinyBoxes(t *testing.T) {
	text := `[
		{"box_2d":[10,10,90,90],"label":"Wardrobe"},
		{"box_2d":[10,10,11,90],"label":"Sliver"},
		{"box_2d":[10,10,90,11],"label":"Column"}
	]`

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Wardrobe" {
		t.Fatalf("detections = %+v, want only Wardrobe", got)
	}
}

func TestParseDetectionsThousandScaleHeuristic(t *testing.T) {
	// Asked for percentages, got a 0-1000 grid back.
	text := `[{"box_2d":[100,200,300,400],"label":"Mug"}]`

	got, err := ParseDetections(text, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("detections = %d, want 1", len(got))
	}
	d := got[0]
	if !almostEqual(d.X, 0.2) || !almostEqual(d.Y, 0.1) || !almostEqual(d.W, 0.2) || !almostEqual(d.H, 0.2) {
		t.Errorf("box = {%v %v %v %v}, want rescaled from 0-1000", d.X, d.Y, d.W, d.H)
	}
}

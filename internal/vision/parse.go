package vision

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
)

// ErrNotConfigured is returned when no vision API key is set.
var ErrNotConfigured = errors.New("vision: no API key configured")

// ErrResponseFormat is returned when the model's reply cannot be read
// as a JSON detection array by any strategy.
var ErrResponseFormat = errors.New("vision: unrecognized response format")

// minBoxSize drops detections smaller than 2% of the image in either
// dimension; boxes that small are almost always noise.
const minBoxSize = 0.02

// Detection is one item reported by the vision model, with its
// bounding box normalized to the unit square. It is ephemeral: nothing
// is persisted until the user promotes a detection to an item.
type Detection struct {
	Label       string  `json:"label"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Material    string  `json:"material,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
}

type rawDetection struct {
	Box         []float64 `json:"box_2d"`
	Label       string    `json:"label"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Metadata    struct {
		Color     string `json:"color"`
		Material  string `json:"material"`
		Condition string `json:"condition"`
	} `json:"metadata"`
}

// ParseDetections reads the model's text reply into normalized
// detections. scale is the coordinate grid the prompt asked for;
// replies that clearly use a 0-1000 grid instead are rescaled
// accordingly. Entries without a usable box or label are dropped,
// the rest of the batch still goes through.
func ParseDetections(text string, scale float64) ([]Detection, error) {
	raw, err := decodeArray(text)
	if err != nil {
		return nil, err
	}

	// Models sometimes ignore the requested grid and answer on
	// 0-1000. If any coordinate exceeds the asked-for scale, assume
	// that happened.
	effective := scale
	for _, rd := range raw {
		for _, v := range rd.Box {
			if v > effective {
				effective = 1000
			}
		}
	}

	var out []Detection
	for _, rd := range raw {
		if rd.Label == "" || len(rd.Box) != 4 {
			slog.Warn("vision: dropping malformed detection", "label", rd.Label, "box_len", len(rd.Box))
			continue
		}
		ymin, xmin, ymax, xmax := rd.Box[0], rd.Box[1], rd.Box[2], rd.Box[3]

		d := Detection{
			Label:       rd.Label,
			Category:    rd.Category,
			Description: rd.Description,
			Color:       rd.Metadata.Color,
			Material:    rd.Metadata.Material,
			Condition:   rd.Metadata.Condition,
			X:           clamp01(xmin / effective),
			Y:           clamp01(ymin / effective),
			W:           clamp01((xmax - xmin) / effective),
			H:           clamp01((ymax - ymin) / effective),
		}
		if d.W <= minBoxSize || d.H <= minBoxSize {
			continue
		}
		if d.X+d.W > 1 || d.Y+d.H > 1 {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// decodeArray tries the reply as-is, then with a code fence stripped,
// then falls back to the first bracketed substring.
func decodeArray(text string) ([]rawDetection, error) {
	text = strings.TrimSpace(text)

	candidate := stripFence(text)
	var raw []rawDetection
	if err := json.Unmarshal([]byte(candidate), &raw); err == nil {
		return raw, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err == nil {
			return raw, nil
		}
	}
	return nil, ErrResponseFormat
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the annotation/export timestamp format: RFC 3339 in UTC
// with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	DefaultDatasetName  = "my_dataset"
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 500
	DefaultBrushSize    = 5
	MinBrushSize        = 1
	MaxBrushSize        = 20
)

// Palette is cycled through as classes are added.
var Palette = []string{
	"#FF0000", "#0000FF", "#00FF00", "#FFFF00",
	"#FF00FF", "#00FFFF", "#FFA500", "#800080",
}

var (
	ErrInvalidJSON = errors.New("invalid JSON file")
	ErrNotADataset = errors.New("upload is not a dataset document")
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether (x, y) lies on the canvas.
func (d Dimensions) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= float64(d.Width) && y <= float64(d.Height)
}

type Class struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewClass returns the class that follows n existing ones: id "class-(n+1)",
// name "Class (n+1)" and the palette color at n.
func NewClass(n int) Class {
	return Class{
		ID:    fmt.Sprintf("class-%d", n+1),
		Name:  fmt.Sprintf("Class %d", n+1),
		Color: Palette[n%len(Palette)],
	}
}

// DefaultClasses is the class list a fresh dataset starts with.
func DefaultClasses() []Class {
	return []Class{NewClass(0), NewClass(1)}
}

// Annotation is one labelled point.
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ClassID   string  `json:"classId"`
	Size      int     `json:"size"`
	Timestamp string  `json:"timestamp"`
}

// Dataset is the exported document.
type Dataset struct {
	Name            string       `json:"name"`
	CreatedAt       string       `json:"createdAt"`
	ImageDimensions Dimensions   `json:"imageDimensions"`
	Classes         []Class      `json:"classes"`
	Annotations     []Annotation `json:"annotations"`
}

// Encode writes the dataset as two-space indented JSON. Empty lists are
// emitted as [] rather than null.
func (d Dataset) Encode() ([]byte, error) {
	if d.Classes == nil {
		d.Classes = []Class{}
	}
	if d.Annotations == nil {
		d.Annotations = []Annotation{}
	}
	return json.MarshalIndent(d, "", "  ")
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Upload is an imported JSON file: its name and the value it parsed to.
// The value is kept verbatim; no schema is enforced.
type Upload struct {
	FileName string
	Raw      json.RawMessage
	Data     any
}

// ParseUpload checks that content is syntactically valid JSON and decodes it
// to a generic value.
func ParseUpload(fileName string, content []byte) (*Upload, error) {
	if !json.Valid(content) {
		return nil, ErrInvalidJSON
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return &Upload{
		FileName: fileName,
		Raw:      append(json.RawMessage(nil), bytes.TrimSpace(content)...),
		Data:     v,
	}, nil
}

// Preview renders the upload as indented JSON.
func (u *Upload) Preview() (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, u.Raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AsDataset decodes the upload into a Dataset. It fails with ErrNotADataset
// when the top-level value is not an object.
func (u *Upload) AsDataset() (*Dataset, error) {
	if _, ok := u.Data.(map[string]any); !ok {
		return nil, ErrNotADataset
	}
	var d Dataset
	if err := json.Unmarshal(u.Raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotADataset, err)
	}
	return &d, nil
}

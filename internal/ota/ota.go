package ota

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"
)

// Variant names the shape a raw OTA document was recognized as.
type Variant string

const (
	VariantUnknown   Variant = "unknown"
	VariantCanonical Variant = "canonical"
	VariantBuilds    Variant = "builds"
	VariantMixed     Variant = "mixed"
)

const (
	LineageOSOEM        = "LineageOS"
	LineageOSMaintainer = "LineageOS Team"
	UnknownDevice       = "Unknown"
)

// File is one artifact of a build.
type File struct {
	Filename string
	URL      string
	Size     string
	SHA256   string

	raw json.RawMessage
}

type fileJSON struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     string `json:"size"`
	SHA256   string `json:"sha256"`
}

// MarshalJSON re-encodes files taken from input verbatim.
func (f File) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}

	return json.Marshal(fileJSON{
		Filename: f.Filename,
		URL:      f.URL,
		Size:     f.Size,
		SHA256:   f.SHA256,
	})
}

// SizeBytes reports the size as an integer when it is one.
func (f File) SizeBytes() (int64, bool) {
	n, err := strconv.ParseInt(f.Size, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Build is one element of a build series.
type Build struct {
	Date     string
	Datetime string
	Version  string
	Type     string
	Files    []File

	raw json.RawMessage
}

// Entry is the canonical record a UI layer consumes.
type Entry struct {
	Device          string          `json:"device"`
	OEM             string          `json:"oem"`
	Maintainer      string          `json:"maintainer"`
	Filename        string          `json:"filename"`
	Download        string          `json:"download"`
	Timestamp       string          `json:"timestamp"`
	Size            string          `json:"size"`
	Version         string          `json:"version"`
	BuildType       string          `json:"buildtype"`
	SHA256          string          `json:"sha256"`
	AdditionalFiles []File          `json:"additionalFiles"`
	AllBuilds       json.RawMessage `json:"allBuilds,omitempty"`
}

// Item is one element of a document's response list. Exactly one of Entry
// and Raw is set; an Item with neither encodes as an empty object.
type Item struct {
	Entry *Entry
	Raw   json.RawMessage
}

// MarshalJSON encodes the entry, or the pass-through value verbatim.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.Entry != nil {
		return json.Marshal(i.Entry)
	}
	if len(i.Raw) == 0 {
		return []byte("{}"), nil
	}
	return i.Raw, nil
}

// Derived reports whether the item was built from a build record.
func (i Item) Derived() bool {
	return i.Entry != nil
}

// Get looks a field up by name on either representation of the item.
func (i Item) Get(field string) gjson.Result {
	b, err := i.MarshalJSON()
	if err != nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(b, gjson.Escape(field))
}

// Document is the canonical {"response": [...]} shape.
type Document struct {
	Response []Item

	// raw is set when the document was passed through unchanged.
	raw json.RawMessage
}

type documentJSON struct {
	Response []Item `json:"response"`
}

// Placeholder returns the minimal document produced for unrecognized input.
func Placeholder() *Document {
	return &Document{
		Response: []Item{{}},
	}
}

// MarshalJSON returns a passed through document unchanged. Built documents
// never encode an empty response.
func (d *Document) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}

	resp := d.Response
	if len(resp) == 0 {
		resp = []Item{{}}
	}
	return json.Marshal(documentJSON{Response: resp})
}

// UnmarshalJSON reads an already canonical document, keeping every response
// element verbatim.
func (d *Document) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return ErrInvalidJSON
	}

	resp := gjson.GetBytes(b, "response")
	if !resp.IsArray() {
		return ErrNotCanonical
	}

	d.Response = rawItems(resp)
	d.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Result carries the normalized document together with how its input was
// recognized.
type Result struct {
	Variant  Variant
	Document *Document
}

// Recognized reports whether the document carries usable data. A canonical
// document needs at least one response element and a mixed array at least one
// derived or entry-like element; a build series always qualifies.
func (r *Result) Recognized() bool {
	switch r.Variant {
	case VariantBuilds:
		return true
	case VariantCanonical:
		return r.Document != nil && len(r.Document.Response) > 0
	case VariantMixed:
		if r.Document == nil {
			return false
		}
		for _, i := range r.Document.Response {
			if entryLike(i) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func rawItems(arr gjson.Result) []Item {
	elems := arr.Array()
	items := make([]Item, len(elems))
	for i, e := range elems {
		items[i] = Item{Raw: json.RawMessage(e.Raw)}
	}
	return items
}

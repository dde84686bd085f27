package ota

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON  = errors.New("invalid json")
	ErrNotCanonical = errors.New("document has no response array")
)

// Shape is the classification of a raw document together with the payload of
// its variant. Only the payload matching Variant is populated.
type Shape struct {
	Variant Variant

	// Canonical holds the response elements of a canonical document.
	Canonical []Item

	// Builds holds every element of a build series.
	Builds []Build

	// Mixed holds the elements of a mixed array in input order.
	Mixed []Element

	raw json.RawMessage
}

// Element is one member of a mixed array: a build, or a value passed through.
type Element struct {
	Build *Build
	Raw   json.RawMessage
}

// Classify inspects the structural markers of raw once and returns its shape.
func Classify(raw []byte) *Shape {
	unknown := &Shape{Variant: VariantUnknown}
	if !gjson.ValidBytes(raw) {
		return unknown
	}

	doc := gjson.ParseBytes(raw)
	switch {
	case doc.IsObject():
		resp := doc.Get("response")
		if !resp.IsArray() {
			return unknown
		}
		return &Shape{
			Variant:   VariantCanonical,
			Canonical: rawItems(resp),
			raw:       append(json.RawMessage(nil), raw...),
		}
	case doc.IsArray():
		elems := doc.Array()
		if len(elems) == 0 {
			return unknown
		}

		if elems[0].Get("files").IsArray() {
			builds := make([]Build, len(elems))
			for i, e := range elems {
				builds[i] = parseBuild(e)
			}
			return &Shape{
				Variant: VariantBuilds,
				Builds:  builds,
				raw:     append(json.RawMessage(nil), raw...),
			}
		}

		mixed := make([]Element, len(elems))
		for i, e := range elems {
			if isBuild(e) {
				b := parseBuild(e)
				mixed[i] = Element{Build: &b}
				continue
			}
			mixed[i] = Element{Raw: json.RawMessage(e.Raw)}
		}
		return &Shape{
			Variant: VariantMixed,
			Mixed:   mixed,
			raw:     append(json.RawMessage(nil), raw...),
		}
	default:
		return unknown
	}
}

func isBuild(e gjson.Result) bool {
	if !e.IsObject() {
		return false
	}
	files := e.Get("files")
	return truthy(e.Get("datetime")) && truthy(files) && files.IsArray()
}

func parseBuild(e gjson.Result) Build {
	b := Build{
		Date:     e.Get("date").String(),
		Datetime: e.Get("datetime").String(),
		Version:  e.Get("version").String(),
		Type:     e.Get("type").String(),
		raw:      json.RawMessage(e.Raw),
	}

	files := e.Get("files")
	if !files.IsArray() {
		return b
	}

	for _, f := range files.Array() {
		b.Files = append(b.Files, File{
			Filename: f.Get("filename").String(),
			URL:      f.Get("url").String(),
			Size:     f.Get("size").String(),
			SHA256:   f.Get("sha256").String(),
			raw:      json.RawMessage(f.Raw),
		})
	}
	return b
}

// entryLike reports whether an item carries any of the fields a UI reads to
// identify a build.
func entryLike(i Item) bool {
	if i.Derived() {
		return true
	}
	return truthy(i.Get("filename")) || truthy(i.Get("device")) || truthy(i.Get("version"))
}

// truthy mirrors JSON value truthiness: null, false, 0, "" and missing values
// are falsy.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}

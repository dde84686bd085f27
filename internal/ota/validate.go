package ota

import (
	"github.com/tidwall/gjson"
)

// Validate reports whether raw is a recognized OTA document shape. It is
// stricter than Normalize: a build series must carry date and datetime on its
// first build, and a mixed array must start with something entry-like.
func Validate(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}

	doc := gjson.ParseBytes(raw)
	if !truthy(doc) {
		return false
	}

	if doc.IsObject() {
		resp := doc.Get("response")
		return resp.IsArray() && len(resp.Array()) > 0
	}

	if !doc.IsArray() {
		return false
	}

	elems := doc.Array()
	if len(elems) == 0 || !elems[0].IsObject() {
		return false
	}

	first := elems[0]
	if truthy(first.Get("date")) && truthy(first.Get("datetime")) && first.Get("files").IsArray() {
		return true
	}

	return truthy(first.Get("filename")) || truthy(first.Get("device")) || truthy(first.Get("version"))
}

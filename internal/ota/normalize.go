package ota

import (
	"encoding/json"

	"go.uber.org/zap"
)

type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Normalizer{
		logger: logger,
	}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize converts raw into the canonical document. It never fails:
// unrecognized input yields the placeholder document and an unknown variant.
func Normalize(raw []byte) *Result {
	return defaultNormalizer.Normalize(raw)
}

// NormalizeValue normalizes an already decoded JSON value.
func NormalizeValue(v any) *Result {
	return defaultNormalizer.NormalizeValue(v)
}

func (n *Normalizer) NormalizeValue(v any) *Result {
	b, err := json.Marshal(v)
	if err != nil {
		n.logger.Warn("failed to encode value for normalization", zap.Error(err))
		return &Result{
			Variant:  VariantUnknown,
			Document: Placeholder(),
		}
	}

	return n.Normalize(b)
}

func (n *Normalizer) Normalize(raw []byte) *Result {
	shape := Classify(raw)
	n.logger.Debug("classified document",
		zap.String("variant", string(shape.Variant)),
		zap.Int("bytes", len(raw)),
	)

	var doc *Document
	switch shape.Variant {
	case VariantCanonical:
		doc = &Document{
			Response: shape.Canonical,
			raw:      shape.raw,
		}
	case VariantBuilds:
		doc = &Document{
			Response: []Item{{Entry: collapseSeries(shape.Builds, shape.raw)}},
		}
	case VariantMixed:
		items := make([]Item, len(shape.Mixed))
		for i, e := range shape.Mixed {
			if e.Build == nil {
				items[i] = Item{Raw: e.Raw}
				continue
			}
			items[i] = Item{Entry: buildEntry(e.Build, false)}
		}
		doc = &Document{
			Response: items,
		}
	default:
		n.logger.Warn("unrecognized document shape, returning placeholder", zap.Int("bytes", len(raw)))
		doc = Placeholder()
	}

	return &Result{
		Variant:  shape.Variant,
		Document: doc,
	}
}

// collapseSeries turns a whole build series into one entry describing its
// first build.
func collapseSeries(builds []Build, series json.RawMessage) *Entry {
	e := buildEntry(&builds[0], true)
	e.AllBuilds = series
	return e
}

func buildEntry(b *Build, preferRelease bool) *Entry {
	primary, _ := SelectPrimaryFile(b.Files, preferRelease)

	additional := make([]File, 0, len(b.Files))
	for _, f := range b.Files {
		if f.Filename != primary.Filename {
			additional = append(additional, f)
		}
	}

	return &Entry{
		Device:          ExtractDeviceToken(primary.Filename),
		OEM:             LineageOSOEM,
		Maintainer:      LineageOSMaintainer,
		Filename:        primary.Filename,
		Download:        primary.URL,
		Timestamp:       b.Datetime,
		Size:            primary.Size,
		Version:         b.Version,
		BuildType:       b.Type,
		SHA256:          primary.SHA256,
		AdditionalFiles: additional,
	}
}

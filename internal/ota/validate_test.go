package ota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"null", `null`, false},
		{"invalid", `[{`, false},
		{"empty object", `{}`, false},
		{"empty array", `[]`, false},
		{"array of empty object", `[{}]`, false},
		{"empty response", `{"response": []}`, false},
		{"response not array", `{"response": {"a": 1}}`, false},
		{"scalar", `42`, false},
		{"array of scalars", `[1, 2]`, false},
		{"first element null", `[null, {"device": "x"}]`, false},
		{"canonical placeholder", `{"response": [{}]}`, true},
		{"build series", `[{"date": "2025-03-08", "datetime": 1741392000, "files": []}]`, true},
		{"build missing date", `[{"datetime": 1741392000, "files": []}]`, false},
		{"build zero datetime", `[{"date": "2025-03-08", "datetime": 0, "files": []}]`, false},
		{"build files not array", `[{"date": "2025-03-08", "datetime": 1, "files": {}}]`, false},
		{"entry by filename", `[{"filename": "a.zip"}]`, true},
		{"entry by device", `[{"device": "renoir"}]`, true},
		{"entry by version", `[{"version": "22.1"}]`, true},
		{"entry with empty fields", `[{"filename": "", "device": null, "version": 0}]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate([]byte(tt.input)))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Variant
	}{
		{`{"response": [{}]}`, VariantCanonical},
		{lineageBuilds, VariantBuilds},
		{`[{"device": "x"}, {"datetime": 1, "files": []}]`, VariantMixed},
		{`[{}]`, VariantMixed},
		{`[]`, VariantUnknown},
		{`null`, VariantUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify([]byte(tt.input)).Variant, tt.input)
	}

	mixed := Classify([]byte(`[{"device": "x"}, {"datetime": 1, "files": []}]`))
	if assert.Len(t, mixed.Mixed, 2) {
		assert.Nil(t, mixed.Mixed[0].Build)
		assert.NotNil(t, mixed.Mixed[1].Build)
	}
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderMismatches(t *testing.T) {
	model := "bge-small"
	other := "e5-base"
	loaded := &Report{Limit: 10, K: 5, Profile: "general", EmbeddingModel: &model}

	tests := []struct {
		name   string
		header Header
		fields []string
	}{
		{name: "identical", header: Header{Limit: 10, K: 5, Profile: "general", EmbeddingModel: &model}},
		{name: "empty profile means default", header: Header{Limit: 10, K: 5, EmbeddingModel: &model}},
		{name: "limit and k", header: Header{Limit: 20, K: 3, EmbeddingModel: &model}, fields: []string{"limit", "k"}},
		{name: "profile", header: Header{Limit: 10, K: 5, Profile: "fast", EmbeddingModel: &model}, fields: []string{"profile"}},
		{name: "model changed", header: Header{Limit: 10, K: 5, EmbeddingModel: &other}, fields: []string{"embedding_model"}},
		{name: "model dropped", header: Header{Limit: 10, K: 5}, fields: []string{"embedding_model"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields []string
			for _, m := range loaded.HeaderMismatches(tt.header) {
				fields = append(fields, m.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestMismatch_String(t *testing.T) {
	m := Mismatch{Field: "k", Previous: "5", Current: "3"}
	assert.Equal(t, "k: report has 5, invocation has 3", m.String())
}

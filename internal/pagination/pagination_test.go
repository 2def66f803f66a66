package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 1000}.Normalize())
}

func TestMeta(t *testing.T) {
	tests := []struct {
		params Params
		total  int64
		want   Meta
	}{
		{Params{Page: 1, Limit: 10}, 0, Meta{Page: 1, Limit: 10, Total: 0, Pages: 0}},
		{Params{Page: 1, Limit: 10}, 10, Meta{Page: 1, Limit: 10, Total: 10, Pages: 1}},
		{Params{Page: 2, Limit: 10}, 11, Meta{Page: 2, Limit: 10, Total: 11, Pages: 2}},
		{Params{Page: 1, Limit: 3}, 10, Meta{Page: 1, Limit: 3, Total: 10, Pages: 4}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.params.Meta(tt.total))
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{}.Offset())
	assert.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterOpIsValid(t *testing.T) {
	for _, op := range []FilterOp{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpRegex} {
		assert.True(t, op.IsValid(), string(op))
	}
	assert.False(t, FilterOp("~").IsValid())
	assert.False(t, FilterOp("").IsValid())
}

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"valid eq", Filter{Field: "year", Op: OpEq, Value: 2010}, true},
		{"valid regex", Filter{Field: "name", Op: OpRegex, Value: "dragon"}, true},
		{"missing field", Filter{Op: OpEq, Value: 1}, false},
		{"bad op", Filter{Field: "year", Op: FilterOp("like")}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Validate())
		})
	}
}

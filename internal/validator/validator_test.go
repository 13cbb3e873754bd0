package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatLabelRule(t *testing.T) {
	validate := NewValidator()

	type input struct {
		Seat string `validate:"seat"`
	}

	valid := []string{"A1", "A9", "B10", "J19", "C7"}
	for _, seat := range valid {
		assert.NoError(t, validate.Struct(input{Seat: seat}), seat)
	}

	invalid := []string{"", "A0", "K1", "a1", "A100", "1A", "A-1", "AA1"}
	for _, seat := range invalid {
		assert.Error(t, validate.Struct(input{Seat: seat}), seat)
	}
}

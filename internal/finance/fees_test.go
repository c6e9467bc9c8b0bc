package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeStructure(t *testing.T) {
	fees := FeeStructure(4_000_000, 0.5, 5000)

	assert.InDelta(t, 20_000, fees.ProcessingFee, 0.01)
	assert.InDelta(t, 5000, fees.DocumentationCharges, 0.01)
	assert.InDelta(t, 25_000, fees.Total, 0.01)
}

func TestFeeStructure_ZeroPrincipal(t *testing.T) {
	fees := FeeStructure(0, 0.5, 5000)

	assert.Zero(t, fees.ProcessingFee)
	assert.InDelta(t, 5000, fees.Total, 0.01)
}

package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	m, err := Validate(decimal.RequireFromString("45.50"), " Bank_Transfer ")
	require.NoError(t, err)
	assert.Equal(t, MethodBankTransfer, m)

	_, err = Validate(decimal.Zero, "cash")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = Validate(decimal.NewFromInt(-5), "cash")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = Validate(decimal.NewFromInt(10), "bitcoin")
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
)

type Method string

const (
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
	MethodStripe       Method = "stripe"
	MethodSquare       Method = "square"
	MethodPaypal       Method = "paypal"
	MethodCheck        Method = "check"
	MethodBankTransfer Method = "bank_transfer"
)

var methods = map[Method]bool{
	MethodCash:         true,
	MethodCard:         true,
	MethodStripe:       true,
	MethodSquare:       true,
	MethodPaypal:       true,
	MethodCheck:        true,
	MethodBankTransfer: true,
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

var ErrInvalidPayment = httperr.ErrBusiness("invalid_payment")

func ParseMethod(raw string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	return m, methods[m]
}

// Validate checks a payment before it is recorded.
func Validate(amount decimal.Decimal, method string) (Method, error) {
	m, ok := ParseMethod(method)
	if !ok || !amount.IsPositive() {
		return "", ErrInvalidPayment
	}
	return m, nil
}

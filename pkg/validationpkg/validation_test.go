package validationpkg

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type request struct {
	Amount string `validate:"required,decimal"`
	Kind   string `validate:"required,account_kind"`
	Mode   string `validate:"required,operation_mode"`
	Class  string `validate:"required,customer_class"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	valid := request{Amount: "10.50", Kind: "SAVINGS", Mode: "JOINT", Class: "STAFF"}

	testCases := []struct {
		name    string
		modify  func(r *request)
		wantTag string
	}{
		{name: "OK", modify: func(r *request) {}},
		{name: "NegativeAmountIsStillDecimal", modify: func(r *request) { r.Amount = "-3" }},
		{name: "Amount", modify: func(r *request) { r.Amount = "ten" }, wantTag: TagDecimal},
		{name: "HugeExponent", modify: func(r *request) { r.Amount = "1e300000000" }, wantTag: TagDecimal},
		{name: "TinyExponent", modify: func(r *request) { r.Amount = "1e-19" }, wantTag: TagDecimal},
		{name: "LargestExponent", modify: func(r *request) { r.Amount = "1e18" }},
		{name: "Kind", modify: func(r *request) { r.Kind = "savings" }, wantTag: TagAccountKind},
		{name: "Mode", modify: func(r *request) { r.Mode = "ANY" }, wantTag: TagOperationMode},
		{name: "Class", modify: func(r *request) { r.Class = "VIP" }, wantTag: TagCustomerClass},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.modify(&r)

			err := v.Struct(r)
			if tc.wantTag == "" {
				require.NoError(t, err)
				return
			}

			var ve validator.ValidationErrors
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.wantTag, ve[0].Tag())
		})
	}
}

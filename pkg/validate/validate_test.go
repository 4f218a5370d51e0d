package validate_test

import (
	"testing"

	"github.com/Astemirdum/library-borrowing/pkg/validate"
	"github.com/stretchr/testify/require"
)

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	type req struct {
		BookID string `json:"bookId" validate:"required"`
		Status string `json:"status" validate:"required,oneof=RETURNED LOST"`
		Copies int    `json:"copies" validate:"gte=0"`
	}

	tests := []struct {
		name    string
		in      req
		wantErr string
	}{
		{
			name: "ok",
			in:   req{BookID: "b1", Status: "RETURNED"},
		},
		{
			name:    "missing book and bad status",
			in:      req{Status: "OVERDUE"},
			wantErr: "BookID is required, Status must be one of [RETURNED LOST]",
		},
		{
			name:    "negative copies",
			in:      req{BookID: "b1", Status: "LOST", Copies: -1},
			wantErr: "Copies must be greater than or equal to 0",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validate.NewCustomValidator().Validate(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

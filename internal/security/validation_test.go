package security

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		maxSize int
		depth   int
		wantErr error
	}{
		{"small object", `{"conversation_id":"c1"}`, 0, 0, nil},
		{"empty", ``, 0, 0, nil},
		{"too large", `{"a":"` + strings.Repeat("x", 100) + `"}`, 50, 0, ErrPayloadTooLarge},
		{"too deep", strings.Repeat("[", 5) + strings.Repeat("]", 5), 0, 4, ErrJSONTooDeep},
		{"at depth limit", strings.Repeat("[", 4) + strings.Repeat("]", 4), 0, 4, nil},
		{"malformed", `{"a":}`, 0, 0, ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePayload([]byte(tt.data), tt.maxSize, tt.depth)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePayload = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePayload = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

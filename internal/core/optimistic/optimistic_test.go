package optimistic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		ok      bool
		err     error
		wantErr error
		want    bool
	}{
		{"commit accepted", true, nil, nil, true},
		{"commit rejected", false, nil, ErrRejected, false},
		{"commit failed", false, boom, boom, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := false
			var seenDuringCommit bool

			err := Apply(
				func() bool { return value },
				func() { value = true },
				func() (bool, error) {
					seenDuringCommit = value
					return tt.ok, tt.err
				},
				func(prev bool) { value = prev },
			)

			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			}
			assert.True(t, seenDuringCommit, "local state must change before the remote call")
			assert.Equal(t, tt.want, value)
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLinkState(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    LinkState
		wantErr bool
	}{
		{
			name: "chat id and nonce",
			raw:  "12345_abcde",
			want: LinkState{ChatID: 12345, Nonce: "abcde"},
		},
		{
			name: "nonce with delimiters",
			raw:  "42_a_b_c",
			want: LinkState{ChatID: 42, Nonce: "a_b_c"},
		},
		{
			name: "short nonce",
			raw:  "42_x",
			want: LinkState{ChatID: 42, Nonce: "x"},
		},
		{
			name:    "no delimiter",
			raw:     "12345",
			wantErr: true,
		},
		{
			name:    "non-numeric chat id",
			raw:     "abc_nonce",
			wantErr: true,
		},
		{
			name:    "empty chat id",
			raw:     "_nonce",
			wantErr: true,
		},
		{
			name:    "empty value",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLinkState(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkStateEncodeRoundTrip(t *testing.T) {
	state := LinkState{ChatID: 987654321, Nonce: "f81d4fae"}

	decoded, err := DecodeLinkState(state.Encode())
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

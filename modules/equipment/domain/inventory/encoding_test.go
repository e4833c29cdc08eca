package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "utf8", in: []byte("SERIAL,USUÁRIO"), want: "SERIAL,USUÁRIO"},
		{name: "utf8 bom", in: append([]byte{0xEF, 0xBB, 0xBF}, "SERIAL"...), want: "SERIAL"},
		{name: "windows-1252", in: []byte{'U', 'S', 'U', 0xC1, 'R', 'I', 'O'}, want: "USUÁRIO"},
		{name: "utf16 le", in: []byte{0xFF, 0xFE, 'O', 0, 'K', 0}, want: "OK"},
		{name: "utf16 be", in: []byte{0xFE, 0xFF, 0, 'O', 0, 'K'}, want: "OK"},
		{name: "empty", in: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeText(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

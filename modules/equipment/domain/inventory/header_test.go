package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

func TestNormalizeHeader(t *testing.T) {
	require.Equal(t, HeaderKey("USUÁRIOATUAL"), NormalizeHeader(" usuário  atual "))
	require.Equal(t, HeaderKey("STATEPROVINCE"), NormalizeHeader("State / Province"))
	require.Equal(t, HeaderKey("SERIAL"), NormalizeHeader("\uFEFFSerial"))
}

func TestMappingTables_LookupThroughSameNormalizer(t *testing.T) {
	for _, m := range []Mapping{BaseMapping, AbsoluteMapping} {
		for _, f := range equipment.AllFields() {
			for _, key := range m.Headers(f) {
				// A normalized key is a fixed point of the normalizer.
				require.Equal(t, key, NormalizeHeader(string(key)))
				got, ok := m.Lookup(string(key))
				require.True(t, ok)
				require.Equal(t, f, got)
			}
		}
	}
}

func TestMappingTables_SpellingVariants(t *testing.T) {
	cases := []struct {
		m    Mapping
		cell string
		want equipment.Field
	}{
		{BaseMapping, "Usuário Atual", equipment.FieldUsuarioAtual},
		{BaseMapping, "USUARIO ATUAL", equipment.FieldUsuarioAtual},
		{BaseMapping, "serial", equipment.FieldSerial},
		{BaseMapping, "Notas P/R", equipment.FieldNotasPR},
		{AbsoluteMapping, "serial number", equipment.FieldSerial},
		{AbsoluteMapping, "STATE/PROVINCE", equipment.FieldEstadoProvincia},
		{AbsoluteMapping, "Username", equipment.FieldUsuarioAtual},
	}
	for _, tc := range cases {
		got, ok := tc.m.Lookup(tc.cell)
		require.True(t, ok, tc.cell)
		require.Equal(t, tc.want, got, tc.cell)
	}

	_, ok := BaseMapping.Lookup("Serial Number")
	require.False(t, ok)
}

func TestMappingFor(t *testing.T) {
	m, ok := MappingFor(FormatAbsolute)
	require.True(t, ok)
	got, ok := m.Lookup("Serial Number")
	require.True(t, ok)
	require.Equal(t, equipment.FieldSerial, got)

	_, ok = MappingFor(SourceFormat(9))
	require.False(t, ok)
	require.Equal(t, "base", FormatBase.String())
}

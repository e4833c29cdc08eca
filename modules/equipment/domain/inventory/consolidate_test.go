package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

func TestConsolidate_AbsoluteWinsTies(t *testing.T) {
	base, err := Parse("SERIAL,EQUIPAMENTO,USUÁRIO ATUAL,LOCAL\nabc 123,Dell,,HQ\n", BaseMapping)
	require.NoError(t, err)
	abs, err := Parse("Serial Number,Device Name,Username\nABC123,HP,Alice\n", AbsoluteMapping)
	require.NoError(t, err)

	ds, err := Consolidate(base, abs)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	r := ds[0]
	require.Equal(t, "HP", r.Value(equipment.FieldEquipamento))
	require.Equal(t, "Alice", r.Value(equipment.FieldUsuarioAtual))
	require.Equal(t, "HQ", r.Value(equipment.FieldLocal))
	require.Equal(t, string(equipment.StatusEmUso), r.Value(equipment.FieldStatus))
	// The serial is a present field too, so the absolute spelling wins.
	require.Equal(t, "ABC123", r.Serial())
}

func TestConsolidate_OrderAndStatus(t *testing.T) {
	base := []equipment.Record{
		equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "B", equipment.FieldStatus: "Descartado"}),
		equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "A", equipment.FieldUsuarioAtual: "Ann", equipment.FieldEmailColaborador: "ann@example.com"}),
	}
	abs := []equipment.Record{
		equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "C"}),
		equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "a", equipment.FieldUsuarioAtual: ""}),
	}
	ds, err := Consolidate(base, abs)
	require.NoError(t, err)
	require.Len(t, ds, 3)
	require.Equal(t, []string{"B", "a", "C"}, []string{ds[0].Serial(), ds[1].Serial(), ds[2].Serial()})

	// A file-provided status is not a prior persisted status.
	require.Equal(t, string(equipment.StatusEstoque), ds[0].Value(equipment.FieldStatus))
	require.Equal(t, string(equipment.StatusEstoque), ds[1].Value(equipment.FieldStatus))
	require.Empty(t, ds[1].Value(equipment.FieldEmailColaborador))
	require.Equal(t, string(equipment.StatusEstoque), ds[2].Value(equipment.FieldStatus))
}

func TestConsolidate_Inputs(t *testing.T) {
	_, err := Consolidate(nil, nil)
	require.ErrorIs(t, err, ErrNoInput)

	ds, err := Consolidate([]equipment.Record{}, nil)
	require.NoError(t, err)
	require.Empty(t, ds)

	onlyAbs := []equipment.Record{equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "X"})}
	ds, err = Consolidate(nil, onlyAbs)
	require.NoError(t, err)
	require.Len(t, ds, 1)
}

func TestConsolidate_DoesNotMutateInput(t *testing.T) {
	base := []equipment.Record{equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "S"})}
	abs := []equipment.Record{equipment.RecordOf(map[equipment.Field]string{equipment.FieldSerial: "s", equipment.FieldLocal: "HQ"})}
	_, err := Consolidate(base, abs)
	require.NoError(t, err)
	require.Equal(t, 1, base[0].Len())
	require.Equal(t, 2, abs[0].Len())
}

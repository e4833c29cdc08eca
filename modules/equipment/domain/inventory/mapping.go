package inventory

import (
	"fmt"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

type SourceFormat int

const (
	FormatBase SourceFormat = iota + 1
	FormatAbsolute
)

func (s SourceFormat) String() string {
	switch s {
	case FormatBase:
		return "base"
	case FormatAbsolute:
		return "absolute"
	default:
		return fmt.Sprintf("SourceFormat(%d)", int(s))
	}
}

// Mapping is an immutable header-to-field table for one source format.
type Mapping struct {
	fields map[HeaderKey]equipment.Field
}

func newMapping(headers map[string]equipment.Field) Mapping {
	m := Mapping{fields: make(map[HeaderKey]equipment.Field, len(headers))}
	for header, f := range headers {
		if !f.Valid() {
			panic(fmt.Sprintf("inventory: header %q maps to invalid field", header))
		}
		key := NormalizeHeader(header)
		if prev, ok := m.fields[key]; ok && prev != f {
			panic(fmt.Sprintf("inventory: header %q maps to both %s and %s", header, prev, f))
		}
		m.fields[key] = f
	}
	return m
}

func (m Mapping) Len() int { return len(m.fields) }

// Lookup normalizes cell and looks it up in the table.
func (m Mapping) Lookup(cell string) (equipment.Field, bool) {
	return m.LookupKey(NormalizeHeader(cell))
}

func (m Mapping) LookupKey(key HeaderKey) (equipment.Field, bool) {
	f, ok := m.fields[key]
	return f, ok
}

// Headers returns the normalized keys that map to f.
func (m Mapping) Headers(f equipment.Field) []HeaderKey {
	var out []HeaderKey
	for k, v := range m.fields {
		if v == f {
			out = append(out, k)
		}
	}
	return out
}

// BaseMapping covers the company asset spreadsheet.
var BaseMapping = newMapping(map[string]equipment.Field{
	"EQUIPAMENTO":               equipment.FieldEquipamento,
	"GARANTIA":                  equipment.FieldGarantia,
	"PATRIMÔNIO":                equipment.FieldPatrimonio,
	"PATRIMONIO":                equipment.FieldPatrimonio,
	"SERIAL":                    equipment.FieldSerial,
	"USUÁRIO ATUAL":             equipment.FieldUsuarioAtual,
	"USUARIO ATUAL":             equipment.FieldUsuarioAtual,
	"USUÁRIO ANTERIOR":          equipment.FieldUsuarioAnterior,
	"USUARIO ANTERIOR":          equipment.FieldUsuarioAnterior,
	"LOCAL":                     equipment.FieldLocal,
	"SETOR":                     equipment.FieldSetor,
	"DATA ENTREGA AO USUÁRIO":   equipment.FieldDataEntregaUsuario,
	"DATA ENTREGA AO USUARIO":   equipment.FieldDataEntregaUsuario,
	"DATA DE DEVOLUÇÃO":         equipment.FieldDataDevolucao,
	"DATA DE DEVOLUCAO":         equipment.FieldDataDevolucao,
	"TIPO":                      equipment.FieldTipo,
	"NOTA DE COMPRA":            equipment.FieldNotaCompra,
	"NOTAS P/R":                 equipment.FieldNotasPR,
	"TERMO DE RESPONSABILIDADE": equipment.FieldNotasPR,
	"FOTO":                      equipment.FieldFoto,
	"QR CODE":                   equipment.FieldQRCode,
	"MARCA":                     equipment.FieldBrand,
	"MODELO":                    equipment.FieldModel,
	"E-MAIL COLABORADOR":        equipment.FieldEmailColaborador,
	"EMAIL COLABORADOR":         equipment.FieldEmailColaborador,
	"OBSERVAÇÕES":               equipment.FieldObservacoes,
	"OBSERVACOES":               equipment.FieldObservacoes,
})

// AbsoluteMapping covers the Absolute agent report.
var AbsoluteMapping = newMapping(map[string]equipment.Field{
	"Device Name":           equipment.FieldEquipamento,
	"Serial Number":         equipment.FieldSerial,
	"Username":              equipment.FieldUsuarioAtual,
	"Identifier":            equipment.FieldIdentificador,
	"OS Name":               equipment.FieldNomeSO,
	"Total Physical Memory": equipment.FieldMemoriaFisicaTotal,
	"Policy Group":          equipment.FieldGrupoPoliticas,
	"Country":               equipment.FieldPais,
	"City":                  equipment.FieldCidade,
	"State/Province":        equipment.FieldEstadoProvincia,
	"Agreement Condition":   equipment.FieldCondicaoAcordo,
	"Make":                  equipment.FieldBrand,
	"Manufacturer":          equipment.FieldBrand,
	"Model":                 equipment.FieldModel,
	"Warranty End Date":     equipment.FieldGarantia,
	"Department":            equipment.FieldSetor,
	"Email":                 equipment.FieldEmailColaborador,
})

// MappingFor returns the table of a source format.
func MappingFor(f SourceFormat) (Mapping, bool) {
	switch f {
	case FormatBase:
		return BaseMapping, true
	case FormatAbsolute:
		return AbsoluteMapping, true
	default:
		return Mapping{}, false
	}
}

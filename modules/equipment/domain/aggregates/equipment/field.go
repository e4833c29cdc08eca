package equipment

// Field is one canonical equipment attribute. The zero value is not a field.
type Field int

const (
	FieldEquipamento Field = iota + 1
	FieldGarantia
	FieldPatrimonio
	FieldSerial
	FieldUsuarioAtual
	FieldUsuarioAnterior
	FieldLocal
	FieldSetor
	FieldDataEntregaUsuario
	FieldStatus
	FieldDataDevolucao
	FieldTipo
	FieldNotaCompra
	FieldNotasPR
	FieldFoto
	FieldQRCode
	FieldBrand
	FieldModel
	FieldEmailColaborador
	FieldIdentificador
	FieldNomeSO
	FieldMemoriaFisicaTotal
	FieldGrupoPoliticas
	FieldPais
	FieldCidade
	FieldEstadoProvincia
	FieldCondicaoAcordo
	FieldObservacoes

	fieldEnd
)

type fieldMeta struct {
	name   string
	column string
}

var fieldMetas = [fieldEnd]fieldMeta{
	FieldEquipamento:        {"equipamento", "equipamento"},
	FieldGarantia:           {"garantia", "garantia"},
	FieldPatrimonio:         {"patrimonio", "patrimonio"},
	FieldSerial:             {"serial", "serial"},
	FieldUsuarioAtual:       {"usuarioAtual", "usuario_atual"},
	FieldUsuarioAnterior:    {"usuarioAnterior", "usuario_anterior"},
	FieldLocal:              {"local", "local"},
	FieldSetor:              {"setor", "setor"},
	FieldDataEntregaUsuario: {"dataEntregaUsuario", "data_entrega_usuario"},
	FieldStatus:             {"status", "status"},
	FieldDataDevolucao:      {"dataDevolucao", "data_devolucao"},
	FieldTipo:               {"tipo", "tipo"},
	FieldNotaCompra:         {"notaCompra", "nota_compra"},
	FieldNotasPR:            {"notasPR", "notas_pr"},
	FieldFoto:               {"foto", "foto"},
	FieldQRCode:             {"qrCode", "qr_code"},
	FieldBrand:              {"brand", "brand"},
	FieldModel:              {"model", "model"},
	FieldEmailColaborador:   {"emailColaborador", "email_colaborador"},
	FieldIdentificador:      {"identificador", "identificador"},
	FieldNomeSO:             {"nomeSO", "nome_so"},
	FieldMemoriaFisicaTotal: {"memoriaFisicaTotal", "memoria_fisica_total"},
	FieldGrupoPoliticas:     {"grupoPoliticas", "grupo_politicas"},
	FieldPais:               {"pais", "pais"},
	FieldCidade:             {"cidade", "cidade"},
	FieldEstadoProvincia:    {"estadoProvincia", "estado_provincia"},
	FieldCondicaoAcordo:     {"condicaoAcordo", "condicao_acordo"},
	FieldObservacoes:        {"observacoes", "observacoes"},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldMetas))
	for _, f := range AllFields() {
		m[f.Name()] = f
	}
	return m
}()

func (f Field) Valid() bool {
	return f > 0 && f < fieldEnd
}

// Name is the canonical JSON name.
func (f Field) Name() string {
	if !f.Valid() {
		return ""
	}
	return fieldMetas[f].name
}

// Column is the equipment table column holding the field.
func (f Field) Column() string {
	if !f.Valid() {
		return ""
	}
	return fieldMetas[f].column
}

func (f Field) String() string {
	return f.Name()
}

// AllFields returns every field in declaration order.
func AllFields() []Field {
	out := make([]Field, 0, fieldEnd-1)
	for f := FieldEquipamento; f < fieldEnd; f++ {
		out = append(out, f)
	}
	return out
}

func ParseField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

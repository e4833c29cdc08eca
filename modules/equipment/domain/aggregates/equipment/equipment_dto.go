package equipment

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/inventory/pkg/constants"
)

type CreateDTO struct {
	Equipamento        string `json:"equipamento" validate:"max=255"`
	Garantia           string `json:"garantia"`
	Patrimonio         string `json:"patrimonio" validate:"max=255"`
	Serial             string `json:"serial" validate:"required,max=255"`
	UsuarioAtual       string `json:"usuarioAtual"`
	UsuarioAnterior    string `json:"usuarioAnterior"`
	Local              string `json:"local"`
	Setor              string `json:"setor"`
	DataEntregaUsuario string `json:"dataEntregaUsuario"`
	Status             string `json:"status" validate:"omitempty,oneof='Em Uso' Estoque Manutenção Descartado Perdido Doado"`
	DataDevolucao      string `json:"dataDevolucao"`
	Tipo               string `json:"tipo"`
	NotaCompra         string `json:"notaCompra"`
	NotasPR            string `json:"notasPR"`
	Foto               string `json:"foto"`
	QRCode             string `json:"qrCode"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	EmailColaborador   string `json:"emailColaborador" validate:"omitempty,email"`
	Identificador      string `json:"identificador"`
	NomeSO             string `json:"nomeSO"`
	MemoriaFisicaTotal string `json:"memoriaFisicaTotal"`
	GrupoPoliticas     string `json:"grupoPoliticas"`
	Pais               string `json:"pais"`
	Cidade             string `json:"cidade"`
	EstadoProvincia    string `json:"estadoProvincia"`
	CondicaoAcordo     string `json:"condicaoAcordo"`
	Observacoes        string `json:"observacoes"`
}

func (d *CreateDTO) fields() map[Field]*string {
	return map[Field]*string{
		FieldEquipamento:        &d.Equipamento,
		FieldGarantia:           &d.Garantia,
		FieldPatrimonio:         &d.Patrimonio,
		FieldSerial:             &d.Serial,
		FieldUsuarioAtual:       &d.UsuarioAtual,
		FieldUsuarioAnterior:    &d.UsuarioAnterior,
		FieldLocal:              &d.Local,
		FieldSetor:              &d.Setor,
		FieldDataEntregaUsuario: &d.DataEntregaUsuario,
		FieldStatus:             &d.Status,
		FieldDataDevolucao:      &d.DataDevolucao,
		FieldTipo:               &d.Tipo,
		FieldNotaCompra:         &d.NotaCompra,
		FieldNotasPR:            &d.NotasPR,
		FieldFoto:               &d.Foto,
		FieldQRCode:             &d.QRCode,
		FieldBrand:              &d.Brand,
		FieldModel:              &d.Model,
		FieldEmailColaborador:   &d.EmailColaborador,
		FieldIdentificador:      &d.Identificador,
		FieldNomeSO:             &d.NomeSO,
		FieldMemoriaFisicaTotal: &d.MemoriaFisicaTotal,
		FieldGrupoPoliticas:     &d.GrupoPoliticas,
		FieldPais:               &d.Pais,
		FieldCidade:             &d.Cidade,
		FieldEstadoProvincia:    &d.EstadoProvincia,
		FieldCondicaoAcordo:     &d.CondicaoAcordo,
		FieldObservacoes:        &d.Observacoes,
	}
}

func (d *CreateDTO) Normalize() {
	for _, v := range d.fields() {
		*v = strings.TrimSpace(*v)
	}
}

func (d *CreateDTO) Ok(ctx context.Context) (map[string]string, bool) {
	d.Normalize()
	return validationErrors(constants.Validate.StructCtx(ctx, d))
}

// ToRecord returns the non-empty fields of the DTO.
func (d *CreateDTO) ToRecord() Record {
	r := NewRecord()
	for f, v := range d.fields() {
		if *v != "" {
			r.Set(f, *v)
		}
	}
	return r
}

// UpdateDTO carries a partial edit: nil fields are left untouched, "" clears a field.
// The serial cannot be changed through an update.
type UpdateDTO struct {
	Equipamento        *string `json:"equipamento" validate:"omitempty,max=255"`
	Garantia           *string `json:"garantia"`
	Patrimonio         *string `json:"patrimonio" validate:"omitempty,max=255"`
	UsuarioAtual       *string `json:"usuarioAtual"`
	UsuarioAnterior    *string `json:"usuarioAnterior"`
	Local              *string `json:"local"`
	Setor              *string `json:"setor"`
	DataEntregaUsuario *string `json:"dataEntregaUsuario"`
	Status             *string `json:"status" validate:"omitempty,oneof='Em Uso' Estoque Manutenção Descartado Perdido Doado"`
	DataDevolucao      *string `json:"dataDevolucao"`
	Tipo               *string `json:"tipo"`
	NotaCompra         *string `json:"notaCompra"`
	NotasPR            *string `json:"notasPR"`
	Foto               *string `json:"foto"`
	QRCode             *string `json:"qrCode"`
	Brand              *string `json:"brand"`
	Model              *string `json:"model"`
	EmailColaborador   *string `json:"emailColaborador" validate:"omitempty,email"`
	Identificador      *string `json:"identificador"`
	NomeSO             *string `json:"nomeSO"`
	MemoriaFisicaTotal *string `json:"memoriaFisicaTotal"`
	GrupoPoliticas     *string `json:"grupoPoliticas"`
	Pais               *string `json:"pais"`
	Cidade             *string `json:"cidade"`
	EstadoProvincia    *string `json:"estadoProvincia"`
	CondicaoAcordo     *string `json:"condicaoAcordo"`
	Observacoes        *string `json:"observacoes"`
}

func (d *UpdateDTO) fields() map[Field]**string {
	return map[Field]**string{
		FieldEquipamento:        &d.Equipamento,
		FieldGarantia:           &d.Garantia,
		FieldPatrimonio:         &d.Patrimonio,
		FieldUsuarioAtual:       &d.UsuarioAtual,
		FieldUsuarioAnterior:    &d.UsuarioAnterior,
		FieldLocal:              &d.Local,
		FieldSetor:              &d.Setor,
		FieldDataEntregaUsuario: &d.DataEntregaUsuario,
		FieldStatus:             &d.Status,
		FieldDataDevolucao:      &d.DataDevolucao,
		FieldTipo:               &d.Tipo,
		FieldNotaCompra:         &d.NotaCompra,
		FieldNotasPR:            &d.NotasPR,
		FieldFoto:               &d.Foto,
		FieldQRCode:             &d.QRCode,
		FieldBrand:              &d.Brand,
		FieldModel:              &d.Model,
		FieldEmailColaborador:   &d.EmailColaborador,
		FieldIdentificador:      &d.Identificador,
		FieldNomeSO:             &d.NomeSO,
		FieldMemoriaFisicaTotal: &d.MemoriaFisicaTotal,
		FieldGrupoPoliticas:     &d.GrupoPoliticas,
		FieldPais:               &d.Pais,
		FieldCidade:             &d.Cidade,
		FieldEstadoProvincia:    &d.EstadoProvincia,
		FieldCondicaoAcordo:     &d.CondicaoAcordo,
		FieldObservacoes:        &d.Observacoes,
	}
}

func (d *UpdateDTO) Normalize() {
	for _, v := range d.fields() {
		if *v != nil {
			trimmed := strings.TrimSpace(**v)
			*v = &trimmed
		}
	}
}

func (d *UpdateDTO) Ok(ctx context.Context) (map[string]string, bool) {
	d.Normalize()
	return validationErrors(constants.Validate.StructCtx(ctx, d))
}

// ToRecord returns only the fields that were sent.
func (d *UpdateDTO) ToRecord() Record {
	r := NewRecord()
	for f, v := range d.fields() {
		if *v != nil {
			r.Set(f, **v)
		}
	}
	return r
}

func validationErrors(err error) (map[string]string, bool) {
	if err == nil {
		return map[string]string{}, true
	}
	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		errs["_"] = err.Error()
		return errs, false
	}
	for _, fe := range verrs {
		errs[jsonFieldName(fe.StructField())] = validationMessage(fe)
	}
	return errs, false
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return ""
	}
	if structField == "QRCode" {
		return "qrCode"
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid e-mail address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

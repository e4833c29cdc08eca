package inventory

import (
	"strings"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

// DeriveStatus maps occupancy to a status: a current user means "Em Uso", none means "Estoque".
// A protected prior status is returned unchanged with derived=false.
func DeriveStatus(usuarioAtual string, prior equipment.Status) (status equipment.Status, derived bool) {
	if prior.IsProtected() {
		return prior, false
	}
	if strings.TrimSpace(usuarioAtual) != "" {
		return equipment.StatusEmUso, true
	}
	return equipment.StatusEstoque, true
}

// applyStatus sets the derived status on r. Moving to stock also clears the occupant's e-mail.
func applyStatus(r *equipment.Record, prior equipment.Status) {
	status, derived := DeriveStatus(r.Value(equipment.FieldUsuarioAtual), prior)
	r.Set(equipment.FieldStatus, string(status))
	if derived && status == equipment.StatusEstoque {
		if r.Has(equipment.FieldUsuarioAtual) {
			r.Set(equipment.FieldUsuarioAtual, "")
		}
		if r.Value(equipment.FieldEmailColaborador) != "" {
			r.Set(equipment.FieldEmailColaborador, "")
		}
	}
}

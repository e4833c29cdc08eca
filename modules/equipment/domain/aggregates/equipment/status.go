package equipment

type Status string

const (
	StatusEmUso      Status = "Em Uso"
	StatusEstoque    Status = "Estoque"
	StatusManutencao Status = "Manutenção"
	StatusDescartado Status = "Descartado"
	StatusPerdido    Status = "Perdido"
	StatusDoado      Status = "Doado"
)

const ApprovalApproved = "approved"

// IsProtected reports whether s is a terminal status that occupancy never overrides.
func (s Status) IsProtected() bool {
	switch s {
	case StatusManutencao, StatusDescartado, StatusPerdido, StatusDoado:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

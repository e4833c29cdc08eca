package viewmodels

// Equipment flattens the record: Fields is keyed by canonical field name and omits absent fields.
type Equipment struct {
	ID             uint              `json:"id"`
	Serial         string            `json:"serial"`
	Status         string            `json:"status,omitempty"`
	Fields         map[string]string `json:"fields"`
	ApprovalStatus string            `json:"approvalStatus"`
	CreatedBy      string            `json:"createdBy,omitempty"`
	CreatedAt      string            `json:"createdAt,omitempty"`
	UpdatedAt      string            `json:"updatedAt,omitempty"`
}

type EquipmentPage struct {
	Items   []*Equipment `json:"items"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"perPage"`
}

type HistoryEntry struct {
	ID        uint   `json:"id"`
	FieldName string `json:"fieldName"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	ChangedBy string `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
}

type HistoryPage struct {
	Entries []*HistoryEntry `json:"entries"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"perPage"`
}

type ImportStatus struct {
	HasInitialConsolidationRun  bool   `json:"hasInitialConsolidationRun"`
	LastAbsoluteUpdateTimestamp string `json:"lastAbsoluteUpdateTimestamp"`
}

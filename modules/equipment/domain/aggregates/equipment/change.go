package equipment

// ChangeKind distinguishes a field edit from the synthetic entry written when a record is created.
type ChangeKind string

const (
	ChangeUpdate ChangeKind = "update"
	ChangeCreate ChangeKind = "create"
)

// CreatedFieldName is stored as the history field name of creation entries.
const CreatedFieldName = "created"

type FieldChange struct {
	EntityID  uint
	ChangedBy string
	Kind      ChangeKind
	Field     Field
	OldValue  string
	NewValue  string
}

// FieldName is the name persisted in the history table.
func (c FieldChange) FieldName() string {
	if c.Kind == ChangeCreate {
		return CreatedFieldName
	}
	return c.Field.Name()
}

// Diff returns one change per field whose value differs between old and next.
// Absent fields compare as "". Only fields present on next are considered.
func Diff(entityID uint, changedBy string, old Record, next Record) []FieldChange {
	var out []FieldChange
	for _, f := range next.Fields() {
		oldVal := old.Value(f)
		newVal := next.Value(f)
		if oldVal == newVal {
			continue
		}
		out = append(out, FieldChange{
			EntityID:  entityID,
			ChangedBy: changedBy,
			Kind:      ChangeUpdate,
			Field:     f,
			OldValue:  oldVal,
			NewValue:  newVal,
		})
	}
	return out
}

// CreationChange marks the creation of the record identified by serial.
func CreationChange(entityID uint, changedBy string, serial string) FieldChange {
	return FieldChange{
		EntityID:  entityID,
		ChangedBy: changedBy,
		Kind:      ChangeCreate,
		Field:     FieldSerial,
		NewValue:  serial,
	}
}

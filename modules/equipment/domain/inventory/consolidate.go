package inventory

import (
	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

// Dataset is a record set deduplicated by merge key, in first-seen order.
type Dataset []equipment.Record

// dedupe collapses records sharing a merge key by overlaying later records on earlier ones.
type dedupe struct {
	order []string
	byKey map[string]*equipment.Record
}

func newDedupe(capacity int) *dedupe {
	return &dedupe{byKey: make(map[string]*equipment.Record, capacity)}
}

func (d *dedupe) add(r equipment.Record) {
	key := equipment.MergeKey(r.Serial())
	if key == "" {
		return
	}
	if existing, ok := d.byKey[key]; ok {
		existing.Overlay(r)
		return
	}
	c := r.Clone()
	d.byKey[key] = &c
	d.order = append(d.order, key)
}

func (d *dedupe) records() Dataset {
	out := make(Dataset, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, *d.byKey[key])
	}
	return out
}

// Consolidate builds the initial inventory. Base records go in first and absolute records are
// overlaid field by field, so the absolute export wins ties. Every record gets a freshly derived
// status: consolidation replaces the whole inventory, so no prior status is consulted. The base
// sheet's STATUS column is not mapped and is reported as an unmapped header.
// Passing nil for both sources is ErrNoInput; an empty slice is a valid, empty source.
func Consolidate(base, absolute []equipment.Record) (Dataset, error) {
	if base == nil && absolute == nil {
		return nil, ErrNoInput
	}
	d := newDedupe(len(base) + len(absolute))
	for _, r := range base {
		d.add(r)
	}
	for _, r := range absolute {
		d.add(r)
	}
	out := d.records()
	for i := range out {
		applyStatus(&out[i], "")
	}
	return out, nil
}

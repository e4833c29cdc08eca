// Package inventory turns the two CSV exports into canonical equipment records and plans how
// they are applied to the persisted inventory. Everything here is pure: no I/O, no clocks.
package inventory

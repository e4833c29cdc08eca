package services

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
)

const exportSheet = "Equipment"

// ExportService renders the inventory as an XLSX workbook with canonical field names as headers.
type ExportService struct {
	repo equipment.Repository
}

func NewExportService(repo equipment.Repository) *ExportService {
	return &ExportService{repo: repo}
}

func exportHeaders() []any {
	fields := equipment.AllFields()
	out := make([]any, 0, len(fields)+4)
	out = append(out, "id")
	for _, f := range fields {
		out = append(out, f.Name())
	}
	return append(out, "approvalStatus", "createdBy", "createdAt", "updatedAt")
}

func exportRow(e equipment.Equipment) []any {
	fields := equipment.AllFields()
	out := make([]any, 0, len(fields)+4)
	out = append(out, e.ID())
	for _, f := range fields {
		out = append(out, e.Value(f))
	}
	return append(out, e.ApprovalStatus(), e.CreatedBy(), e.CreatedAt(), e.UpdatedAt())
}

// Export writes the workbook to w and returns the number of data rows.
func (s *ExportService) Export(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, errors.Wrap(err, "rename sheet")
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, errors.Wrap(err, "stream writer")
	}
	if err := sw.SetRow("A1", exportHeaders()); err != nil {
		return 0, errors.Wrap(err, "write header")
	}
	for i, e := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := sw.SetRow(cell, exportRow(e)); err != nil {
			return 0, errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, errors.Wrap(err, "flush sheet")
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, errors.Wrap(err, "write workbook")
	}
	return len(items), nil
}

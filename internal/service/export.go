package service

import (
	"context"
	"fmt"

	"github.com/pkordes/haul-slips/internal/export"
)

// ExportCSV renders every stored slip, newest date first, as CSV text in the
// fixed column order.
func (s *SlipService) ExportCSV(ctx context.Context) ([]byte, error) {
	slips, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SlipService.ExportCSV: %w", err)
	}

	out, err := export.RenderAll(slips)
	if err != nil {
		return nil, fmt.Errorf("service.SlipService.ExportCSV: %w", err)
	}
	return out, nil
}

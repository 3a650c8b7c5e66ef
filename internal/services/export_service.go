package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pullboard/pullboard/internal/models"
)

// ExportService renders a fetch result as an xlsx workbook for the
// dashboard's download button.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

var exportHeaders = []string{
	"Number", "Title", "Author", "State", "Draft", "Labels", "Created At", "Updated At", "URL",
}

// Workbook writes one row per pull request under a header row.
func (s *ExportService) Workbook(result *models.FetchResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pull Requests"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, pr := range result.Items {
		values := []interface{}{
			pr.Number,
			pr.Title,
			pr.Author,
			pr.State,
			pr.IsDraft,
			strings.Join(pr.Labels, ", "),
			pr.CreatedAt.Format(time.RFC3339),
			pr.UpdatedAt.Format(time.RFC3339),
			pr.HTMLURL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f.WriteToBuffer()
}

package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/oakmere-data/enricher/internal/dto"
	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/repository"
)

// RecordsService exposes read and import operations for the record store.
type RecordsService struct {
	repo repository.RecordsRepository
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// NewRecordsService creates a new instance of RecordsService.
func NewRecordsService(repo repository.RecordsRepository) *RecordsService {
	return &RecordsService{repo: repo}
}

// ListRecords returns records respecting pagination defaults.
func (s *RecordsService) ListRecords(ctx context.Context, filter dto.RecordListFilter) ([]entity.Record, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// GetRecord fetches a single record by its identifier.
func (s *RecordsService) GetRecord(ctx context.Context, id string) (*entity.Record, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid record id")
	}
	return s.repo.GetByID(ctx, recordID)
}

var requiredCSVHeaders = []string{"company_name", "country", "sic_codes"}

// ImportCSV ingests business records from a CSV reader. Rows without a
// company name are skipped and counted.
func (s *RecordsService) ImportCSV(ctx context.Context, r io.Reader) (dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportResult{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return dto.ImportResult{}, valErr
	}

	var (
		inputs  []repository.ImportRowInput
		skipped int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportResult{}, fmt.Errorf("read csv row: %w", err)
		}

		companyName := strings.TrimSpace(row[indexMap["company_name"]])
		if companyName == "" {
			skipped++
			continue
		}

		var sicCodes *string
		if codes := strings.TrimSpace(row[indexMap["sic_codes"]]); codes != "" {
			sicCodes = &codes
		}

		inputs = append(inputs, repository.ImportRowInput{
			CompanyName: companyName,
			Country:     strings.TrimSpace(row[indexMap["country"]]),
			SICCodes:    sicCodes,
		})
	}

	summary, err := s.repo.ImportRows(ctx, inputs)
	if err != nil {
		return dto.ImportResult{}, err
	}

	return dto.ImportResult{
		Rows:     summary.Total + skipped,
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Skipped:  skipped,
	}, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

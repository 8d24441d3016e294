package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// ErrNoFields means the CSV header mapped to none of the claim fields
var ErrNoFields = errors.New("no recognizable claim columns in header")

// Claim is one ingested claim row. Err is set when the source row could not
// be parsed; such claims skip evaluation and surface as batch error rows.
type Claim struct {
	Name   string
	Fields model.ClaimFields
	Err    error
}

// nameColumns are header labels treated as the patient/case name
var nameColumns = map[string]bool{
	"name":         true,
	"patient":      true,
	"patient_name": true,
	"case":         true,
	"case_id":      true,
}

// ReadClaims reads a claim table from a CSV file. Header columns are matched
// through the field alias table, so exports with headings like
// "Prescribed Medication" or "Lab/Investigations" load without remapping.
// Unknown columns are ignored. Rows missing a name get "Patient N".
// A row that fails to parse becomes a claim carrying the parse error, so
// one bad row never aborts the batch.
func ReadClaims(path string) ([]Claim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return readClaims(file)
}

func readClaims(r io.Reader) ([]Claim, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	fieldCols := make(map[int]model.FieldName)
	nameCol := -1
	for i, col := range header {
		key := normalizeHeader(col)
		if nameCol == -1 && nameColumns[key] {
			nameCol = i
			continue
		}
		if field, ok := model.CanonicalField(col); ok {
			if _, taken := columnTaken(fieldCols, field); !taken {
				fieldCols[i] = field
			}
		}
	}
	if len(fieldCols) == 0 {
		return nil, ErrNoFields
	}

	var claims []Claim
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			claims = append(claims, Claim{
				Name: fmt.Sprintf("Patient %d", row),
				Err:  fmt.Errorf("read row %d: %w", row, err),
			})
			continue
		}

		claim := Claim{}
		for i, value := range record {
			value = strings.TrimSpace(value)
			if i == nameCol {
				claim.Name = value
				continue
			}
			if field, ok := fieldCols[i]; ok && value != "" {
				claim.Fields.Set(field, value)
			}
		}
		if claim.Name == "" {
			claim.Name = fmt.Sprintf("Patient %d", row)
		}
		claims = append(claims, claim)
	}

	return claims, nil
}

func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func columnTaken(cols map[int]model.FieldName, field model.FieldName) (int, bool) {
	for i, f := range cols {
		if f == field {
			return i, true
		}
	}
	return -1, false
}

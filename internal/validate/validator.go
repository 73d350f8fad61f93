// Package validate implements the read-only integrity checker from
// spec.md §4.8: it consumes a transaction and reports faults without
// mutating the database, or, in fix mode, repairs what it safely can
// inside the same transaction. Grounded on rust/src/db/validate.rs and
// the teacher's cmd/bd/doctor/*.go DoctorCheck reporting shape.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/ident"
	"github.com/autobib/autobib/internal/store"
)

// FaultKind classifies one integrity finding (spec.md §4.8).
type FaultKind int

const (
	RecordHasInvalidCanonical FaultKind = iota
	DanglingRecord
	NullIdentifiers
	IntegrityError
	InvalidRecordData
	ContainsCycle
	ParentKeyMissing
)

func (k FaultKind) String() string {
	switch k {
	case RecordHasInvalidCanonical:
		return "record has invalid canonical id"
	case DanglingRecord:
		return "dangling record"
	case NullIdentifiers:
		return "null identifiers"
	case IntegrityError:
		return "integrity error"
	case InvalidRecordData:
		return "invalid record data"
	case ContainsCycle:
		return "cycle in parent chain"
	case ParentKeyMissing:
		return "parent key missing"
	default:
		return "unknown fault"
	}
}

// InvalidBytes locates a codec decode failure within a row's blob.
type InvalidBytes struct {
	Offset int
	Msg    string
}

// Fault is one reported integrity finding.
type Fault struct {
	Kind     FaultKind
	RowID    int64
	Name     string
	Count    int
	Msg      string
	Invalid  InvalidBytes
	RowIDSet []int64
}

func (f Fault) String() string {
	switch f.Kind {
	case RecordHasInvalidCanonical:
		return fmt.Sprintf("row %s: record_id %q does not parse as a valid remote id", statemachineHex(f.RowID), f.Name)
	case DanglingRecord:
		return fmt.Sprintf("row %s: canonical %q has no identifier pointing to it", statemachineHex(f.RowID), f.Name)
	case NullIdentifiers:
		return fmt.Sprintf("%d identifier row(s) point to a nonexistent record", f.Count)
	case IntegrityError:
		return fmt.Sprintf("store integrity error: %s", f.Msg)
	case InvalidRecordData:
		return fmt.Sprintf("row %s (%s): invalid entry data at offset %d: %s", statemachineHex(f.RowID), f.Name, f.Invalid.Offset, f.Invalid.Msg)
	case ContainsCycle:
		return fmt.Sprintf("cycle detected among rows %v", f.RowIDSet)
	case ParentKeyMissing:
		return fmt.Sprintf("row %s: parent_key references a nonexistent row", statemachineHex(f.RowID))
	default:
		return f.Kind.String()
	}
}

func statemachineHex(key int64) string {
	return fmt.Sprintf("0x%04x", key)
}

// Report is the full output of a validation pass.
type Report struct {
	Faults []Fault
}

// HasErrors reports whether any fault was found.
func (r Report) HasErrors() bool { return len(r.Faults) > 0 }

// Validate runs every check in spec.md §4.8 against tx and returns the
// accumulated faults. It never mutates the database.
func Validate(ctx context.Context, tx *store.Tx) (Report, error) {
	var report Report

	allRows, err := tx.AllRecords(ctx)
	if err != nil {
		return report, fmt.Errorf("validate: listing records: %w", err)
	}
	rowsByKey := make(map[int64]*store.RecordRow, len(allRows))
	for _, row := range allRows {
		rowsByKey[row.Key] = row
	}

	canonicalRows := make(map[string][]*store.RecordRow)
	for _, row := range allRows {
		canonicalRows[row.RecordID] = append(canonicalRows[row.RecordID], row)

		// A row's record_id is always the canonical remote id it was
		// resolved from (spec.md §4.5); it must parse as provider:sub_id,
		// never as a bare alias.
		if _, remote, err := ident.NewRecordId(row.RecordID).Classify(); err != nil || remote.Provider == "" {
			report.Faults = append(report.Faults, Fault{Kind: RecordHasInvalidCanonical, RowID: row.Key, Name: row.RecordID})
		}

		if row.ParentKey.Valid {
			if _, ok := rowsByKey[row.ParentKey.Int64]; !ok {
				report.Faults = append(report.Faults, Fault{Kind: ParentKeyMissing, RowID: row.Key})
			}
		}

		if row.Variant == store.VariantEntry {
			if _, err := codec.Decode(row.Data); err != nil {
				invalid := InvalidBytes{Msg: err.Error()}
				var codecErr *codec.InvalidBytesError
				if errors.As(err, &codecErr) {
					invalid = InvalidBytes{Offset: codecErr.Offset, Msg: codecErr.Message}
				}
				report.Faults = append(report.Faults, Fault{
					Kind: InvalidRecordData, RowID: row.Key, Name: row.RecordID,
					Invalid: invalid,
				})
			}
		}
	}

	identifiers, err := tx.AllIdentifiers(ctx)
	if err != nil {
		return report, fmt.Errorf("validate: listing identifiers: %w", err)
	}

	boundCanonicals := make(map[string]bool)
	nullCount := 0
	for _, id := range identifiers {
		row, ok := rowsByKey[id.RecordKey]
		if !ok {
			nullCount++
			continue
		}
		boundCanonicals[row.RecordID] = true
	}
	if nullCount > 0 {
		report.Faults = append(report.Faults, Fault{Kind: NullIdentifiers, Count: nullCount})
	}

	for canonical, rows := range canonicalRows {
		if !boundCanonicals[canonical] {
			report.Faults = append(report.Faults, Fault{Kind: DanglingRecord, RowID: rows[0].Key, Name: canonical})
		}
	}

	cycles, err := DetectCycles(ctx, tx, canonicalRows)
	if err != nil {
		return report, err
	}
	for _, cycle := range cycles {
		report.Faults = append(report.Faults, Fault{Kind: ContainsCycle, RowIDSet: cycle})
	}

	return report, nil
}

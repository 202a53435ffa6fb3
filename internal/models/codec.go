/**
 * @description
 * JSON codec for record sequences. The distributed tier stores one JSON blob
 * per (kind, ticker) sequence; decoding dispatches on the kind tag to recover
 * the concrete record type.
 */

package models

import (
	"encoding/json"
	"fmt"
)

// MarshalRecords serializes a record sequence to JSON.
func MarshalRecords(records []Record) ([]byte, error) {
	return json.Marshal(records)
}

// UnmarshalRecords decodes a JSON payload into records of the given kind.
// A payload that does not decode is corrupt, not a miss; callers translate
// the error accordingly.
func UnmarshalRecords(kind Kind, data []byte) ([]Record, error) {
	switch kind {
	case KindPrices:
		return decodeAs[Price](data)
	case KindFinancialMetrics:
		return decodeAs[FinancialMetric](data)
	case KindLineItems:
		return decodeAs[LineItem](data)
	case KindInsiderTrades:
		return decodeAs[InsiderTrade](data)
	case KindCompanyNews:
		return decodeAs[CompanyNews](data)
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

func decodeAs[T Record](data []byte) ([]Record, error) {
	var concrete []T
	if err := json.Unmarshal(data, &concrete); err != nil {
		return nil, err
	}
	records := make([]Record, len(concrete))
	for i, r := range concrete {
		records[i] = r
	}
	return records, nil
}

// AsRecords converts a concrete record slice to the interface form the
// storage tiers work with.
func AsRecords[T Record](concrete []T) []Record {
	records := make([]Record, len(concrete))
	for i, r := range concrete {
		records[i] = r
	}
	return records
}

// FromRecords converts interface records back to their concrete type.
// Records of a different concrete type are skipped.
func FromRecords[T Record](records []Record) []T {
	concrete := make([]T, 0, len(records))
	for _, r := range records {
		if c, ok := r.(T); ok {
			concrete = append(concrete, c)
		}
	}
	return concrete
}

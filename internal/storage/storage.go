package storage

import "pairpool/internal/model"

// Sink defines a destination for emitted operation records.
type Sink interface {
	PutRecordBatch(records []model.Record) error
}

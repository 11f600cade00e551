// Package storage writes finished reports.
package storage

import "tokenScope/internal/model"

// Storage defines a sink for reports.
type Storage interface {
	PutReport(report model.Report) error
}

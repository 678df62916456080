package repository

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// getResult records the span outcome of a single-row lookup
func getResult[T any](span trace.Span, value T, err error) (T, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return value, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return value, err
	}

	span.SetStatus(codes.Ok, "")
	return value, nil
}

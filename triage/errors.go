package triage

import "errors"

var (
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrMalformedRow      = errors.New("malformed row")
	ErrEmptyDataset      = errors.New("dataset is empty")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidValue      = errors.New("invalid field value")
	ErrUnknownClassIndex = errors.New("unknown class index")
	ErrUnknownLabel      = errors.New("unknown label")
)

package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrSuperseded      = errors.New("upload superseded by a newer file")
	ErrSessionNotFound = errors.New("upload session not found")
	ErrSessionBusy     = errors.New("upload session is busy")
	ErrNotReady        = errors.New("upload session has no result yet")
	ErrConfirmed       = fmt.Errorf("%w: already added to a list", ErrNotReady)
	ErrEnrichment      = errors.New("enrichment failed")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidInput    = errors.New("invalid input")

	ErrUnknownTarget = errors.New("unknown list target")
	ErrListReadOnly  = errors.New("shopping list is read-only")
	ErrItemNotFound  = errors.New("shopping list item not found")
	ErrListNotFound  = errors.New("shopping list not found")

	ErrNoteTooLong     = errors.New("quote note too long")
	ErrCompanyNotFound = errors.New("company not found")
	ErrNoSalesRep      = errors.New("no sales rep on request")

	ErrTipNotFound = errors.New("tip not found")
)

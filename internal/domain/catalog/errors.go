package catalog

import "github.com/catalogsync/backend/internal/domain/shared"

// Catalog errors
var (
	// ErrSourceUnavailable is returned when the upstream source cannot be reached or rejects our credentials
	ErrSourceUnavailable = shared.NewDomainError("SOURCE_UNAVAILABLE", "Catalog source is unavailable")

	// ErrSourceMalformed is returned when the upstream payload cannot be read as catalog records
	ErrSourceMalformed = shared.NewDomainError("SOURCE_MALFORMED", "Catalog source returned malformed data")

	// ErrInvalidCriteria is returned for a custom report attribute outside the allow-list
	ErrInvalidCriteria = shared.NewDomainError("INVALID_CRITERIA", "Invalid report criteria")

	// ErrEmptyStore is returned when clearing a store that holds no products
	ErrEmptyStore = shared.NewDomainError("EMPTY_STORE", "The table contains no elements. No deletions were performed.")
)

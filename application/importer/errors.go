package importer

import (
	"errors"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/domain/region"
	"github.com/groupnom/overture-import/domain/taxonomy"
)

// Failure classes of an import. Returned errors wrap one of these together
// with the underlying cause, so callers match with errors.Is.
var (
	// ErrConfiguration covers bad input detected before any I/O.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnection covers failures opening the source or destination.
	ErrConnection = errors.New("connection error")
	// ErrSourceRead covers failures executing or streaming the source query.
	ErrSourceRead = errors.New("source read error")
	// ErrRowEnrichment covers a single row that cannot be enriched. It is
	// logged and the row skipped; it never fails a run.
	ErrRowEnrichment = errors.New("row enrichment error")
	// ErrWrite covers failures writing or committing to the destination.
	ErrWrite = errors.New("write error")
)

// isConfigurationError reports whether err comes from selection or
// vocabulary validation.
func isConfigurationError(err error) bool {
	var invalidCodes *region.InvalidCodesError
	return errors.As(err, &invalidCodes) ||
		errors.Is(err, place.ErrInvalidRelease) ||
		errors.Is(err, place.ErrInvalidCountry) ||
		errors.Is(err, taxonomy.ErrEmptyVocabulary)
}

package sharepoint

import (
	"errors"
	"net/http"
)

// ErrMissingETag is returned when an update or delete is attempted without the
// record's concurrency token.
var ErrMissingETag = errors.New("sharepoint: etag required for update and delete")

// Intent is the purpose of a request against the list. Each intent maps to a
// fixed header set and HTTP method.
type Intent int

const (
	IntentReadMinimal Intent = iota
	IntentReadFull
	IntentCreate
	IntentUpdate
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentReadMinimal:
		return "read-minimal"
	case IntentReadFull:
		return "read-full"
	case IntentCreate:
		return "create"
	case IntentUpdate:
		return "update"
	case IntentDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Method is GET for reads and POST for everything else; MERGE and DELETE are
// tunnelled through POST with a verb override header.
func (i Intent) Method() string {
	switch i {
	case IntentReadMinimal, IntentReadFull:
		return http.MethodGet
	default:
		return http.MethodPost
	}
}

// Headers builds a fresh header set for the intent. Update and delete require
// an etag and fail here, before any request is built, when it is missing.
func (i Intent) Headers(etag string) (http.Header, error) {
	h := make(http.Header, 4)
	switch i {
	case IntentReadMinimal:
		h.Set(headerAccept, acceptNoMetadata)
	case IntentReadFull:
		h.Set(headerAccept, acceptFullMetadata)
	case IntentCreate:
		h.Set(headerAccept, acceptNoMetadata)
		h.Set(headerContentType, contentTypeJSON)
	case IntentUpdate:
		if etag == "" {
			return nil, ErrMissingETag
		}
		h.Set(headerAccept, acceptNoMetadata)
		h.Set(headerContentType, contentTypeJSON)
		h.Set(headerHTTPMethod, "MERGE")
		h.Set(headerIfMatch, etag)
	case IntentDelete:
		if etag == "" {
			return nil, ErrMissingETag
		}
		h.Set(headerAccept, acceptNoMetadata)
		h.Set(headerHTTPMethod, "DELETE")
		h.Set(headerIfMatch, etag)
	default:
		return nil, errors.New("sharepoint: unknown request intent")
	}
	return h, nil
}

package sharepoint

import "time"

const (
	defaultListTitle   = "Games List"
	defaultHTTPTimeout = 10 * time.Second

	apiListPath = "/_api/web/lists/getbytitle('%s')"

	acceptNoMetadata   = "application/json; odata.metadata=none"
	acceptFullMetadata = "application/json; odata.metadata=full"
	contentTypeJSON    = "application/json"

	headerAccept      = "ACCEPT"
	headerContentType = "CONTENT-TYPE"
	headerHTTPMethod  = "X-HTTP-Method"
	headerIfMatch     = "IF-MATCH"

	maxErrorBody = 512
	tracerName   = "github.com/preston-bernstein/games-list-service/internal/sharepoint"
)

// selectFields is the projection requested on every read. Metadata fields are
// never selected; they come back through the Accept header instead.
var selectFields = []string{"Id", "Title", "platform", "datePurchased", "dateLastPlayed", "comments"}

// Operation names used in errors, spans and metrics.
const (
	OpList       = "list"
	OpGet        = "get"
	OpLatest     = "latest"
	OpEntityType = "entity_type"
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
)

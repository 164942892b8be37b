package metrics

// Attribute keys shared by the HTTP and list store instruments.
const (
	AttrMethod    = "method"
	AttrPath      = "path"
	AttrStatus    = "status"
	AttrBackend   = "backend"
	AttrOperation = "operation"
	AttrOutcome   = "outcome"
)

// Values for AttrOutcome on list store calls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

package logg

const (
	Layer     = "layer"
	Operation = "operation"
	RequestID = "request_id"
	Action    = "action"
	Selector  = "selector"
	URL       = "url"
	Query     = "query"
	State     = "state"
)

package contextkeys

// CtxKey is a custom type for context keys to avoid collisions.
type CtxKey string

const (
	// RequestBodyKey holds the verified raw request body ([]byte).
	RequestBodyKey CtxKey = "requestBody"
	// RequestIDKey holds the request id assigned by middleware.RequestID.
	RequestIDKey CtxKey = "requestID"
)

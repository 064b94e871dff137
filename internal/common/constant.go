package common

// SessionCookieName is the default cookie carrying the opaque session id.
const SessionCookieName = "bir_session"

// RequestIDHeader is echoed back on every HTTP response.
const RequestIDHeader = "X-Request-ID"

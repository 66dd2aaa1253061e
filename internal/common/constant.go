package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries the request id between client and gateway.
const RequestIDHeaderName = "X-Request-ID"

// TokenKey is the only key the client persists: the bearer token.
const TokenKey = "userToken"

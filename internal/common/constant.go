package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the scheme prefix expected in the Authorization header.
const BearerScheme = "Bearer"

// TokenTypeBearer is returned as token_type in token pair responses.
const TokenTypeBearer = "bearer"

// RequestIDHeaderName carries the request correlation id.
const RequestIDHeaderName = "X-Request-Id"

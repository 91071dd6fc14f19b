package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected prefix of the Authorization header value.
const BearerPrefix = "Bearer "

// TokenTypeBearer is the token_type value returned with every token pair.
const TokenTypeBearer = "bearer"

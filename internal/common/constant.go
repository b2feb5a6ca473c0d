package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the alternative metadata key carrying
// "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// Package common contains shared constants and sentinel errors used across
// pointfeed components.
package common

// AuthorizationHeaderName is the gRPC metadata key (and HTTP header) carrying
// the session credential as "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the credential in the authorization header.
const BearerPrefix = "Bearer "

// TopicPostAdded is the event topic published whenever a post is created.
const TopicPostAdded = "post_added"

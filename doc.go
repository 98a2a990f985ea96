// Package register implements the self-registration add-on for a SCIM style
// identity provider: inbound user payloads are persisted inactive on a remote
// resource server, an activation link carrying a single-use token is mailed to
// the primary address, and redeeming the token flips the record to active.
//
// Registration workflow:
//   - StartRegistrationHandler decodes the raw payload, requires exactly one
//     primary email, forces the USER role, attaches a fresh activation token
//     under a configurable extension URN, creates the record through the
//     ResourceClient and dispatches the activation mail. Remote statuses are
//     forwarded verbatim; nothing is retried.
//   - ActivateUserHandler fetches the record, compares the supplied token in
//     constant time and, on a match, clears the token and activates the user
//     through the registration Lifecycle. Any non-positive path collapses into
//     a generic unauthorized outcome so responses cannot be used as a
//     token-guessing oracle.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by both handlers to
//     describe registration and activation events. Sinks run best-effort
//     (errors are logged) so you can forward events to a database or queue
//     without blocking the request.
//
// OAuth2 clients:
//   - Client models the credential records used to authorize callers of the
//     identity API. NewClientFromClient preserves the fill-defaults copy
//     construction: missing secrets and grant type sets are synthesized so
//     partially specified registrations become fully valid records.
package register

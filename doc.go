// Package notes is the backend of a note-taking service: principal accounts
// (admins and users), their notes, and the authentication layer that guards
// every protected route.
//
// Authentication:
//   - Passwords are stored as bcrypt hashes produced by a PasswordHasher. The
//     work factor never drops below MinBcryptCost.
//   - TokenService signs HS256 tokens whose payload nests the principal id under
//     its role key, e.g. {"admin": {"id": "..."}}. The signing key is injected
//     at construction; an empty key is a construction error.
//   - jwtware middleware verifies tokens per request and attaches the resolved
//     Identity. Admin and user middlewares read different payload keys and are
//     not interchangeable.
//
// Accounts:
//   - Accounts implements register, login, profile, update and delete for one
//     principal kind. The same type backs both the admin and the user routes;
//     the differences are configuration (route names, audit capability).
//
// Activity sinks:
//   - ActivitySink receives auth events. InfoActivitySink persists admin events
//     into the info table when the audit capability is enabled. Sinks are
//     best-effort; failures are logged and never fail the request.
package notes

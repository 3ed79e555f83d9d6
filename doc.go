// Package hrauth provides the authentication and authorization core for an
// HR administration backend: credential verification, JWT issuance and
// validation, role-gated request middleware, and password recovery.
//
// Accounts and roles:
//   - Accounts carry an AccountStatus that is persisted via Bun. Disabled
//     accounts keep their credentials but cannot log in.
//   - Roles are plain named records joined many-to-many; the gate middleware
//     compares a token's role claims against a declarative route-to-role map
//     so a single table drives every authorization decision.
//
// Password recovery:
//   - InitializePasswordResetHandler binds a one-time 6-digit code with an
//     expiry to the account; the code is delivered out of band via a Mailer.
//   - VerifyResetCodeHandler checks a code without consuming it, and
//     FinalizePasswordResetHandler swaps the password hash and clears the
//     challenge in a single transaction.
//
// Tokens are stateless HS256 JWTs; there is no server-side session store and
// no revocation list. TokenService signs and validates with an injected key,
// and RequireAuth binds the resulting claims to the request context.
package hrauth

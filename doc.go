// Package resumekit implements the commerce backend for the Admivo resume
// kit storefront: checkout intents, payment verification against the
// provider's signed callbacks, credential provisioning for paid accounts,
// and the password reset / OTP flows.
//
// The HTTP surface is a fiber application; the admin back office lives
// behind the middleware/admingate route gate. Storage goes through bun
// repositories so the underlying store stays an injectable collaborator.
package resumekit

// Package schema loads the OpenAPI description of the posts resource and
// validates post attributes against it using kin-openapi. The document is
// embedded so validation works without any files on disk; callers can load an
// alternate document with NewValidatorFromData.
package schema

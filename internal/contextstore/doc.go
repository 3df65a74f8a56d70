// Package contextstore resolves prompt templates by kind and value.
//
// Templates live as plain text files named <kind>/<value>.txt. Defaults are
// embedded in the binary; files under the configured context directory shadow
// them, so operators can tune a tone or directive without rebuilding.
package contextstore

// Package errors provides structured, actionable error messages for the
// outlet CLI and configuration layers.
//
// Library packages (nav, pattern, routepath) return plain sentinel errors
// suitable for errors.Is checks. User-facing surfaces wrap those in coded
// errors that:
//   - Explain what went wrong in plain language
//   - Suggest how to fix issues with examples
//   - Link to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - pattern: Template compilation and path building errors
//   - table: Route table registration errors
//   - navigation: Path resolution and transition errors
//   - registration: Node tree mounting errors
//   - config: outlet.json errors
//   - cli: Command-line usage errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "N001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("N020").
//	    WithSuggestion("Remove the existing route before re-adding it")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR N020: Duplicate route path
//	//
//	//   A route with the same template is already registered in this table.
//	//
//	//   Hint: Remove the existing route before re-adding it
//	//
//	//   Learn more: https://outlet.dev/docs/errors/N020
package errors

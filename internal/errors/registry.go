package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Navigation Errors (N001-N019)
	// ============================================

	"N001": {
		Category: CategoryNavigation,
		Message:  "No route matches the path",
		Detail:   "The path did not match any registered template and the table has no fallback route.",
		DocURL:   "https://outlet.dev/docs/errors/N001",
	},
	"N002": {
		Category: CategoryNavigation,
		Message:  "Node is closed",
		Detail:   "The navigation node has been torn down. Navigations on a closed node are rejected.",
		DocURL:   "https://outlet.dev/docs/errors/N002",
	},
	"N003": {
		Category: CategoryNavigation,
		Message:  "Invalid navigation path",
		Detail:   "The path failed canonicalization. Paths must be root-relative, without scheme, host, backslashes, or segments that escape the root.",
		DocURL:   "https://outlet.dev/docs/errors/N003",
	},

	// ============================================
	// Table Errors (N020-N039)
	// ============================================

	"N020": {
		Category: CategoryTable,
		Message:  "Duplicate route path",
		Detail:   "A route with the same template is already registered in this table.",
		DocURL:   "https://outlet.dev/docs/errors/N020",
	},
	"N021": {
		Category: CategoryTable,
		Message:  "Invalid route descriptor",
		Detail:   "The descriptor is missing required fields. Every route needs a path template.",
		DocURL:   "https://outlet.dev/docs/errors/N021",
	},
	"N022": {
		Category: CategoryTable,
		Message:  "Route not found in table",
		Detail:   "No registered route matches the given path or descriptor.",
		DocURL:   "https://outlet.dev/docs/errors/N022",
	},

	// ============================================
	// Pattern Errors (N040-N059)
	// ============================================

	"N040": {
		Category: CategoryPattern,
		Message:  "Missing build parameter",
		Detail:   "Building a concrete path from this template requires a parameter that was not provided.",
		DocURL:   "https://outlet.dev/docs/errors/N040",
	},
	"N041": {
		Category: CategoryPattern,
		Message:  "Wildcard templates cannot be built",
		Detail:   "Templates containing * or ** capture arbitrary tails and cannot be reversed into a concrete path.",
		DocURL:   "https://outlet.dev/docs/errors/N041",
	},

	// ============================================
	// Registration Errors (N060-N079)
	// ============================================

	"N060": {
		Category: CategoryRegistration,
		Message:  "No ancestor node in context",
		Detail:   "Announce requires a context carrying an open ancestor node. Wrap the context with nav.WithNode first.",
		DocURL:   "https://outlet.dev/docs/errors/N060",
	},

	// ============================================
	// Configuration Errors (N080-N099)
	// ============================================

	"N080": {
		Category: CategoryConfig,
		Message:  "Invalid outlet.json",
		Detail:   "The outlet.json configuration file is malformed.",
		DocURL:   "https://outlet.dev/docs/errors/N080",
	},
	"N081": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://outlet.dev/docs/errors/N081",
	},
	"N082": {
		Category: CategoryConfig,
		Message:  "Invalid inspector address",
		Detail:   "The configured inspector listen address is not a valid host:port.",
		DocURL:   "https://outlet.dev/docs/errors/N082",
	},
	"N083": {
		Category: CategoryConfig,
		Message:  "Invalid publish configuration",
		Detail:   "Publishing to S3 requires both a bucket and a region.",
		DocURL:   "https://outlet.dev/docs/errors/N083",
	},

	// ============================================
	// CLI Errors (N100-N119)
	// ============================================

	"N100": {
		Category: CategoryCLI,
		Message:  "Manifest file unreadable",
		Detail:   "The manifest file could not be opened or read.",
		DocURL:   "https://outlet.dev/docs/errors/N100",
	},
	"N101": {
		Category: CategoryCLI,
		Message:  "Invalid manifest",
		Detail:   "The manifest file is not valid manifest JSON.",
		DocURL:   "https://outlet.dev/docs/errors/N101",
	},
	"N102": {
		Category: CategoryCLI,
		Message:  "Shadowed routes detected",
		Detail:   "One or more routes can never win a match because a higher-precedence route in the same table always wins.",
		DocURL:   "https://outlet.dev/docs/errors/N102",
	},
	"N103": {
		Category: CategoryCLI,
		Message:  "Manifest publish failed",
		Detail:   "The manifest could not be uploaded to the configured bucket.",
		DocURL:   "https://outlet.dev/docs/errors/N103",
	},
	"N104": {
		Category: CategoryCLI,
		Message:  "Not an outlet project",
		Detail:   "The current directory has no outlet.json. Run this command from a project root or pass --config.",
		DocURL:   "https://outlet.dev/docs/errors/N104",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E001-E019)
	// ============================================

	"E001": {
		Category:   CategoryReactive,
		Message:    "Path resolution failed",
		Detail:     "A path expression indexed into a value that is not an object.",
		Suggestion: "Check that every segment before the last names an object in the data.",
	},
	"E002": {
		Category:   CategoryReactive,
		Message:    "Nested tracked evaluation",
		Detail:     "A watcher was created while another watcher was evaluating its path.",
		Suggestion: "Create watchers from event handlers or after compilation, not from watcher callbacks.",
	},
	"E003": {
		Category:   CategoryReactive,
		Message:    "Notification cascade limit exceeded",
		Detail:     "Watchers kept writing to the model from their own notifications.",
		Suggestion: "Look for a method or binding that writes back into the property it reads.",
	},

	// ============================================
	// Binding Errors (E020-E039)
	// ============================================

	"E020": {
		Category:   CategoryBinding,
		Message:    "Missing method",
		Detail:     "An event directive names a method the instance does not declare.",
		Suggestion: `Declare the method under "methods" in vbind.yaml.`,
	},
	"E021": {
		Category: CategoryBinding,
		Message:  "Directive failed to compile",
	},

	// ============================================
	// Template Errors (E040-E059)
	// ============================================

	"E040": {
		Category:   CategoryTemplate,
		Message:    "Template parse failed",
		Suggestion: "Check that the template is well-formed HTML.",
	},
	"E041": {
		Category: CategoryTemplate,
		Message:  "Render failed",
		Detail:   "The compiled tree could not be written out.",
	},

	// ============================================
	// Config Errors (E060-E079)
	// ============================================

	"E060": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Suggestion: "Run `vbind check` to validate vbind.yaml.",
	},
	"E061": {
		Category:   CategoryConfig,
		Message:    "Config file not readable",
		Suggestion: "Pass --config with the path to vbind.yaml.",
	},
	"E062": {
		Category:   CategoryConfig,
		Message:    "Invalid method declaration",
		Detail:     "Declared methods support assign, increment and toggle.",
		Suggestion: `Each entry under "methods" needs at least one action.`,
	},

	// ============================================
	// Source Errors (E080-E099)
	// ============================================

	"E080": {
		Category:   CategorySource,
		Message:    "Source not found",
		Suggestion: "Use a local path or an s3://bucket/key URL.",
	},
	"E081": {
		Category:   CategorySource,
		Message:    "Data decode failed",
		Detail:     "The data file must decode to a mapping at the top level.",
		Suggestion: "Data files are YAML or JSON objects.",
	},
	"E082": {
		Category:   CategorySource,
		Message:    "S3 fetch failed",
		Suggestion: "Check the s3 section of vbind.yaml and the bucket permissions.",
	},

	// ============================================
	// Server Errors (E100-E119)
	// ============================================

	"E100": {
		Category:   CategoryServer,
		Message:    "Server failed",
		Suggestion: "Check that the listen address is free.",
	},
	"E101": {
		Category: CategoryServer,
		Message:  "Unknown session",
		Detail:   "The websocket named a session the server does not hold.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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

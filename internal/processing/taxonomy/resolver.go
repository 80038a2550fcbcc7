// Package taxonomy turns error codes reported by the link backend into
// display-ready descriptors.
package taxonomy

// Code is the machine-readable reason the backend attaches to a GraphQL error
// under extensions.code.
type Code string

// Codes emitted by the createURL mutation.
const (
	// CodeUnauthorized is reserved: callers react to it with a login flow
	// instead of showing a descriptor.
	CodeUnauthorized    Code = "invalidAuthToken"
	CodeAliasTaken      Code = "aliasAlreadyExist"
	CodeNotHuman        Code = "requesterNotHuman"
	CodeInvalidLongLink Code = "invalidLongLink"
	CodeInvalidAlias    Code = "invalidCustomAlias"
	CodeMaliciousLink   Code = "maliciousLongLink"
	CodeRateLimited     Code = "rateLimited"
	CodeInternal        Code = "internal"
)

// Descriptor is a {name, description} pair suitable for direct display.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Unknown is returned for every code missing from the table.
var Unknown = Descriptor{
	Name:        "Unexpected error",
	Description: "Something went wrong while creating the short link. Please try again later.",
}

var defaultTable = map[Code]Descriptor{
	CodeUnauthorized: {
		Name:        "Unauthorized",
		Description: "Your session has expired or is invalid. Please sign in again.",
	},
	CodeAliasTaken: {
		Name:        "Alias not available",
		Description: "The alias you chose is already taken. Please pick a different one.",
	},
	CodeNotHuman: {
		Name:        "Are you human?",
		Description: "We could not verify that this request came from a person. Please try again.",
	},
	CodeInvalidLongLink: {
		Name:        "Invalid long link",
		Description: "The long link is not a valid http or https URL.",
	},
	CodeInvalidAlias: {
		Name:        "Invalid custom alias",
		Description: "The custom alias may only contain letters, digits, hyphens and underscores.",
	},
	CodeMaliciousLink: {
		Name:        "Malicious link",
		Description: "The long link was flagged as unsafe and cannot be shortened.",
	},
	CodeRateLimited: {
		Name:        "Too many requests",
		Description: "You are creating links too quickly. Please wait a moment and try again.",
	},
	CodeInternal: {
		Name:        "Server error",
		Description: "The link service failed to process the request. Please try again later.",
	},
}

// Resolver looks codes up in a static table.
type Resolver struct {
	table map[Code]Descriptor
}

// NewResolver returns a Resolver over the default table. Entries in overrides
// replace or extend the defaults.
func NewResolver(overrides map[Code]Descriptor) *Resolver {
	table := make(map[Code]Descriptor, len(defaultTable)+len(overrides))
	for code, d := range defaultTable {
		table[code] = d
	}
	for code, d := range overrides {
		table[code] = d
	}
	return &Resolver{table: table}
}

// Resolve never fails: unmapped codes, including the empty code, yield Unknown.
func (r *Resolver) Resolve(code Code) Descriptor {
	if r == nil {
		return Unknown
	}
	if d, ok := r.table[code]; ok {
		return d
	}
	return Unknown
}

// Known reports whether code has its own descriptor.
func (r *Resolver) Known(code Code) bool {
	if r == nil {
		return false
	}
	_, ok := r.table[code]
	return ok
}

// IsAuthorization reports whether code means the caller must re-authenticate.
func IsAuthorization(code Code) bool {
	return code == CodeUnauthorized
}

// Prioritize picks the code that drives classification of a multi-error
// response. Authorization codes win over every business-rule code; otherwise
// the first code in the backend's order is used. ok is false for an empty list.
func Prioritize(codes []Code) (code Code, ok bool) {
	if len(codes) == 0 {
		return "", false
	}
	for _, c := range codes {
		if IsAuthorization(c) {
			return c, true
		}
	}
	return codes[0], true
}

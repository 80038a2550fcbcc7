package links

import (
	"errors"
	"fmt"

	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
)

// Kind tags a Failure. There are exactly three.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindCreation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindCreation:
		return "creation"
	}
	return "unknown"
}

// Validation failure fields.
const (
	FieldLongLink    = "longLink"
	FieldCustomAlias = "customAlias"
)

const msgUnauthorized = "Unauthorized to create short link"

// Failure is the only error CreateShortLink returns.
//
//   - KindValidation: Field and Message describe the rejected input. No
//     network call was made.
//   - KindAuthorization: the caller must re-authenticate.
//   - KindCreation: Descriptor is ready for display; Code is the backend code
//     that produced it, empty when none was available.
type Failure struct {
	Kind       Kind
	Field      string
	Message    string
	Code       taxonomy.Code
	Descriptor taxonomy.Descriptor
	cause      error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindValidation:
		return fmt.Sprintf("invalid %s: %s", f.Field, f.Message)
	case KindAuthorization:
		return f.Message
	default:
		return fmt.Sprintf("%s: %s", f.Descriptor.Name, f.Descriptor.Description)
	}
}

func (f *Failure) Unwrap() error { return f.cause }

func validationFailure(field string, err error) *Failure {
	return &Failure{Kind: KindValidation, Field: field, Message: err.Error(), cause: err}
}

func authorizationFailure(cause error) *Failure {
	return &Failure{Kind: KindAuthorization, Message: msgUnauthorized, cause: cause}
}

func creationFailure(code taxonomy.Code, d taxonomy.Descriptor, cause error) *Failure {
	return &Failure{Kind: KindCreation, Code: code, Descriptor: d, cause: cause}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

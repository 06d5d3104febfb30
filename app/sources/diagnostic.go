package sources

import (
	"errors"
	"fmt"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

// Kind separates "site unreachable" from "site changed shape".
type Kind string

const (
	KindTransient  Kind = "transient"
	KindStructural Kind = "structural"
	KindConfig     Kind = "config"
)

// Diagnostic describes why a source check yielded fewer items than expected.
type Diagnostic struct {
	Kind       Kind
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (d *Diagnostic) Error() string {
	switch {
	case d.StatusCode > 0:
		return fmt.Sprintf("%s: HTTP %d for %s", d.Kind, d.StatusCode, d.URL)
	case d.Cause != nil && d.Message != "":
		return fmt.Sprintf("%s: %s for %s: %v", d.Kind, d.Message, d.URL, d.Cause)
	case d.Cause != nil:
		return fmt.Sprintf("%s: %v for %s", d.Kind, d.Cause, d.URL)
	default:
		return fmt.Sprintf("%s: %s for %s", d.Kind, d.Message, d.URL)
	}
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

func ClassifyHTTPStatus(statusCode int, url string) *Diagnostic {
	return &Diagnostic{Kind: KindTransient, URL: url, StatusCode: statusCode}
}

func ClassifyNetworkError(cause error, url string) *Diagnostic {
	return &Diagnostic{Kind: KindTransient, URL: url, Message: "request failed", Cause: cause}
}

func ClassifyParseError(cause error, url string) *Diagnostic {
	return &Diagnostic{Kind: KindTransient, URL: url, Message: "unparseable payload", Cause: cause}
}

func Structural(url, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: KindStructural, URL: url, Message: fmt.Sprintf(format, args...)}
}

// AsDiagnostic returns err as a Diagnostic, treating unclassified errors as
// transient failures against url.
func AsDiagnostic(err error, url string) *Diagnostic {
	var diagnostic *Diagnostic
	if errors.As(err, &diagnostic) {
		return diagnostic
	}
	return ClassifyNetworkError(err, url)
}

// Result is what every source adapter returns. Items is never nil-checked by
// callers; an empty result with diagnostics is the degraded outcome.
type Result struct {
	Items       []feed.RawItem
	Diagnostics []*Diagnostic
}

func (r *Result) add(diagnostic *Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, diagnostic)
}

func failed(diagnostic *Diagnostic) Result {
	return Result{Diagnostics: []*Diagnostic{diagnostic}}
}

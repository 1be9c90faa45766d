// Package diag carries the info/warning/error messages produced while a
// season is ingested and computed. Every message is tagged with the source
// location it was raised for at emission time.
package diag

import (
	"fmt"
	"strings"
	"sync"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// Info marks expected anomalies such as a DNF token.
	Info Severity = iota
	// Warning marks recoverable data-quality issues.
	Warning
	// Error marks structural problems that abort the affected event.
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity accepts info, warn/warning and error (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return Info, nil
	case "warn", "warning":
		return Warning, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown severity: %s", s)
	}
}

// Diagnostic codes.
const (
	CodeNameOrder         = "name-order"
	CodeNameFormat        = "name-format"
	CodeBirthYearNaN      = "birth-year-nan"
	CodeBirthYearRange    = "birth-year-range"
	CodePositionUnparsed  = "position-unparsed"
	CodePositionDuplicate = "position-duplicate"
	CodePositionMissing   = "position-missing"
	CodeSimilarNames      = "similar-names"
	CodeSource            = "source"
)

// Location points at the spreadsheet cell row a diagnostic was raised for.
// Zero fields are unknown.
type Location struct {
	File  string `json:"file,omitempty"`
	Sheet string `json:"sheet,omitempty"`
	Row   int    `json:"row,omitempty"`
}

// IsZero reports whether nothing about the location is known.
func (l Location) IsZero() bool { return l == Location{} }

func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	if l.Row > 0 {
		return fmt.Sprintf("%s[%s]:%d", l.File, l.Sheet, l.Row)
	}
	return fmt.Sprintf("%s[%s]", l.File, l.Sheet)
}

// Diagnostic is one operator-facing message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

func (d Diagnostic) String() string {
	if d.Location.IsZero() {
		return fmt.Sprintf("%s: %s", strings.ToUpper(d.Severity.String()), d.Message)
	}
	return fmt.Sprintf("%s: %s @%s", strings.ToUpper(d.Severity.String()), d.Message, d.Location)
}

// Reporter receives diagnostics as they are raised.
type Reporter interface {
	Report(d Diagnostic)
}

// Infof reports an info diagnostic.
func Infof(r Reporter, loc Location, code, format string, args ...any) {
	emit(r, Info, loc, code, format, args...)
}

// Warnf reports a warning diagnostic.
func Warnf(r Reporter, loc Location, code, format string, args ...any) {
	emit(r, Warning, loc, code, format, args...)
}

// Errorf reports an error diagnostic.
func Errorf(r Reporter, loc Location, code, format string, args ...any) {
	emit(r, Error, loc, code, format, args...)
}

func emit(r Reporter, sev Severity, loc Location, code, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Discard drops every diagnostic.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}

// Report buffers diagnostics in emission order. It is safe for concurrent use.
type Report struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (r *Report) Report(d Diagnostic) {
	r.mu.Lock()
	r.items = append(r.items, d)
	r.mu.Unlock()
}

// Diagnostics returns a copy of the buffered diagnostics.
func (r *Report) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many buffered diagnostics have severity sev.
func (r *Report) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether an Error diagnostic was buffered.
func (r *Report) HasErrors() bool { return r.Count(Error) > 0 }

// Len returns the number of buffered diagnostics.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// FlushTo forwards the buffered diagnostics to dst in order and empties the buffer.
func (r *Report) FlushTo(dst Reporter) {
	r.mu.Lock()
	items := r.items
	r.items = nil
	r.mu.Unlock()
	for _, d := range items {
		dst.Report(d)
	}
}

// Multi fans a diagnostic out to several reporters.
type Multi []Reporter

// Report forwards d to every reporter.
func (m Multi) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

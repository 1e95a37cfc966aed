package fonts

import "fmt"

// FontLoadError is returned when an explicitly supplied font file cannot be
// read or parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("fonts: load %s: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// FontNotAvailableError is returned when no font file was supplied and the
// expected family is not installed on the host.
type FontNotAvailableError struct {
	Family string
}

func (e *FontNotAvailableError) Error() string {
	return fmt.Sprintf("fonts: family %q is not installed on this host; supply the path to its font file", e.Family)
}

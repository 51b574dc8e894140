package git

import "fmt"

// ExtractionError reports a repository state that prevents generation
// before any network attempt is made. Hint tells the user how to fix it.
type ExtractionError struct {
	Reason string
	Hint   string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s (%s)", e.Reason, e.Hint)
	}
	return e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NotARepository builds the error returned when no git repository is
// found at or above the given directory.
func NotARepository(dir string, err error) *ExtractionError {
	return &ExtractionError{
		Reason: fmt.Sprintf("not a git repository: %s", dir),
		Hint:   "run inside a git repository or git init first",
		Err:    err,
	}
}

// NothingStaged builds the error returned when the index holds no changes.
func NothingStaged() *ExtractionError {
	return &ExtractionError{
		Reason: "no staged changes found",
		Hint:   "stage the changes to describe with git add",
	}
}

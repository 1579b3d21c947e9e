package services

// Outcome reports whether a mutation found its target record. Operations on
// missing ids are not errors; callers decide whether NotFound matters.
type Outcome int

const (
	NotFound Outcome = iota
	Found
)

// Found reports whether the target record existed.
func (o Outcome) Found() bool { return o == Found }

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "not_found"
}

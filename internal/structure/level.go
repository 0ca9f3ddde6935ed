package structure

import "fmt"

// HeadingLevel classifies a fragment's structural role. Levels are strictly
// ordered for nesting comparisons: Title outranks H1, which outranks H2, and
// so on down to Body.
type HeadingLevel int

const (
	LevelTitle HeadingLevel = iota
	LevelH1
	LevelH2
	LevelH3
	LevelBody
)

func (l HeadingLevel) String() string {
	switch l {
	case LevelTitle:
		return "Title"
	case LevelH1:
		return "H1"
	case LevelH2:
		return "H2"
	case LevelH3:
		return "H3"
	default:
		return "Body"
	}
}

// Outranks reports whether l sits above other in the heading hierarchy.
func (l HeadingLevel) Outranks(other HeadingLevel) bool {
	return l < other
}

func (l HeadingLevel) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.String())), nil
}

func (l *HeadingLevel) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"Title"`:
		*l = LevelTitle
	case `"H1"`:
		*l = LevelH1
	case `"H2"`:
		*l = LevelH2
	case `"H3"`:
		*l = LevelH3
	case `"Body"`:
		*l = LevelBody
	default:
		return fmt.Errorf("unknown heading level %s", b)
	}
	return nil
}

package codec

type attrState uint8

const (
	attrLeave attrState = iota
	attrNull
	attrString
)

// Attr is the string side of a reflected property. An attribute is either
// present with a string value or absent (Null). Converters may also answer
// Leave, meaning the attribute should not be touched at all.
type Attr struct {
	state attrState
	value string
}

func Leave() Attr            { return Attr{state: attrLeave} }
func Null() Attr             { return Attr{state: attrNull} }
func String(s string) Attr   { return Attr{state: attrString, value: s} }
func (a Attr) IsLeave() bool { return a.state == attrLeave }
func (a Attr) IsNull() bool  { return a.state == attrNull }

// Value returns the attribute string and whether the attribute is present.
func (a Attr) Value() (string, bool) {
	return a.value, a.state == attrString
}

// Equal reports whether a and b describe the same attribute state.
func (a Attr) Equal(b Attr) bool {
	return a.state == b.state && a.value == b.value
}

func (a Attr) String() string {
	switch a.state {
	case attrNull:
		return "<null>"
	case attrString:
		return a.value
	default:
		return "<leave>"
	}
}

// FromPresence converts the (value, ok) pair hosts usually return into an Attr.
func FromPresence(s string, ok bool) Attr {
	if !ok {
		return Null()
	}
	return String(s)
}

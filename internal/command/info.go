package command

import "strconv"

// ArgCount is the number of arguments a command requires.
type ArgCount int

// Any accepts any number of arguments, including none.
const Any ArgCount = -1

// String returns the count, or "any".
func (n ArgCount) String() string {
	if n == Any {
		return "any"
	}
	return strconv.Itoa(int(n))
}

// Info is the registered signature of a command.
type Info struct {
	// Name is matched exactly and case-sensitively.
	Name string

	// Args is the required argument count, or Any.
	Args ArgCount

	// Description is human-readable documentation.
	Description string
}

// Accepts reports whether cmd has this signature's name and a permitted
// number of arguments.
func (i Info) Accepts(cmd Command) bool {
	if cmd.Name() != i.Name {
		return false
	}
	return i.Args == Any || cmd.Len() == int(i.Args)
}

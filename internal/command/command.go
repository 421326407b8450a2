// Package command provides parsed console commands and the signatures
// they are validated against.
package command

import (
	"strings"
)

// Command is a parsed instruction: a name and its ordered arguments.
type Command struct {
	name string
	args []string
}

// Parse splits line on runs of whitespace. The first token is the name,
// the remaining tokens are the arguments. An empty line yields an empty
// Command.
func Parse(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{
		name: fields[0],
		args: fields[1:],
	}
}

// New creates a Command from an already tokenized name and arguments.
func New(name string, args ...string) Command {
	c := Command{name: name}
	if len(args) > 0 {
		c.args = append([]string(nil), args...)
	}
	return c
}

// Name returns the command name.
func (c Command) Name() string {
	return c.name
}

// Args returns a copy of the arguments.
func (c Command) Args() []string {
	if len(c.args) == 0 {
		return nil
	}
	out := make([]string, len(c.args))
	copy(out, c.args)
	return out
}

// Arg returns the i-th argument, or "" if there is none.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i]
}

// Len returns the number of arguments.
func (c Command) Len() int {
	return len(c.args)
}

// Empty reports whether the command has no name.
func (c Command) Empty() bool {
	return c.name == ""
}

// String joins the name and arguments with single spaces.
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.name
	}
	return c.name + " " + strings.Join(c.args, " ")
}

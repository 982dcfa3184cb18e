package user

import (
	"fmt"
	"strings"
)

// Op names one of the account operations.
type Op int

const (
	OpCreate Op = iota + 1
	OpFetch
	OpUpdate
	OpDelete
)

var opNames = map[Op]string{
	OpCreate: "create",
	OpFetch:  "fetch",
	OpUpdate: "update",
	OpDelete: "delete",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// ParseOp returns the Op with the given name.
func ParseOp(name string) (Op, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for op, opName := range opNames {
		if opName == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operation %q", ErrValidation, name)
}

// Ops returns every operation in order.
func Ops() []Op {
	return []Op{OpCreate, OpFetch, OpUpdate, OpDelete}
}

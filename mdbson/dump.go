package mdbson

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// DumpIndent is the indentation used by Dump.
var DumpIndent = "  "

// Dump renders a document (struct, map or bson.D) as indented relaxed extended JSON.
func Dump(document interface{}) (string, error) {
	if document == nil {
		return "{}", nil
	}
	out, err := bson.MarshalExtJSONIndent(document, false, false, "", DumpIndent)
	if err != nil {
		return "", fmt.Errorf("marshal extended JSON: %w", err)
	}
	return string(out), nil
}

// MustDump renders a document like Dump, returning the error text if marshaling fails.
// Intended for display only.
func MustDump(document interface{}) string {
	out, err := Dump(document)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return out
}

// Set wraps the fields in a $set update operator.
func Set(fields bson.D) bson.D {
	return bson.D{{Key: "$set", Value: fields}}
}

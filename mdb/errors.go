package mdb

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

////////////////////////////////////////////////////////////////////////////////
// Functions to check for specific, known errors.

const codeValidationFailure = 121

// IsDuplicate checks to see if the specified error is for attempting to create a duplicate document.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound checks an error condition to see if it matches the underlying database "not found" error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsValidationFailure checks to see if the specified error is for a validation failure.
func IsValidationFailure(err error) bool {
	return hasWriteErrorCode(err, codeValidationFailure)
}

// IsUnreachable checks for errors meaning the server could not be reached or did not answer in time.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var selErr topology.ServerSelectionError
	if errors.As(err, &selErr) {
		return true
	}
	var selErrPtr *topology.ServerSelectionError
	if errors.As(err, &selErrPtr) {
		return true
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func hasWriteErrorCode(err error, code int) bool {
	if err == nil {
		return false
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == code {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == code {
				return true
			}
		}
	}

	return false
}

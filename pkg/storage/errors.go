package storage

import (
	"errors"
	"fmt"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

type Kind string

const (
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindUnavailable Kind = "unavailable"
	KindOther       Kind = "other"
)

// Error tags an object store failure. Callers branch on Kind, never on text.
type Error struct {
	Kind   Kind
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s/%s: %s: %v", e.Op, e.Bucket, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOther
}

func IsAuth(err error) bool { return KindOf(err) == KindAuth }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

var authCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
	"AccountProblem":        true,
}

var notFoundCodes = map[string]bool{
	"NoSuchBucket": true,
	"NoSuchKey":    true,
	"NotFound":     true,
}

func classify(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kindFromSDK(err), Op: op, Bucket: bucket, Key: key, Err: err}
}

func kindFromSDK(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case authCodes[code]:
			return KindAuth
		case notFoundCodes[code]:
			return KindNotFound
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch status := respErr.HTTPStatusCode(); {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return KindAuth
		case status == http.StatusNotFound:
			return KindNotFound
		case status >= 500:
			return KindUnavailable
		}
		return KindOther
	}

	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		// No HTTP response at all: DNS, refused connection, timeout.
		return KindUnavailable
	}
	return KindOther
}

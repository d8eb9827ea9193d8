package aws

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/imamik/etcdseed/internal/util/retry"
)

var throttlingCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"PriorRequestNotComplete":                true,
	"ServiceUnavailable":                     true,
	"InternalFailure":                        true,
	"RequestThrottled":                       true,
	"TooManyRequestsException":               true,
	"ProvisionedThroughputExceededException": true,
}

// isRetryable checks if an AWS API error is transient.
func isRetryable(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return throttlingCodes[apiErr.ErrorCode()]
	}
	return false
}

// classify marks non-transient AWS API errors as fatal for retry.Fixed.
// Errors that are not API errors (transport, IMDS) are retried.
func classify(err error) error {
	if err == nil || isRetryable(err) {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return retry.Fatal(err)
	}
	return err
}

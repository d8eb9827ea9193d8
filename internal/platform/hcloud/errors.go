package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/etcdseed/internal/util/retry"
)

// isRetryable checks if an API error is worth another attempt.
func isRetryable(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeRateLimitExceeded,
		hcloud.ErrorCodeResourceUnavailable,
		hcloud.ErrorCodeServiceError,
		hcloud.ErrorCodeTimeout,
		hcloud.ErrorCodeMaintenance,
	)
}

// classify marks non-retryable API errors as fatal for retry.Fixed.
func classify(err error) error {
	if err == nil || isRetryable(err) {
		return err
	}
	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		return retry.Fatal(err)
	}
	// Transport errors are retried.
	return err
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeRateLimitExceeded)
}

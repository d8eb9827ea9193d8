// Package retry runs an operation a bounded number of times with a fixed,
// blocking wait between attempts.
//
// [Fixed] stops early on success, on an error marked with [Fatal], or when
// the context is cancelled while waiting. Running out of attempts yields an
// [ExhaustedError] that wraps the last failure. The members API calls of a
// bootstrap run and the cloud provider lookups both go through it.
package retry

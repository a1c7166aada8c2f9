// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay. It is used for cloud API
// calls and SSH session establishment, where failures are often transient.
// Errors wrapped with [Fatal] are never retried.
package retry

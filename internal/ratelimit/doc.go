// Package ratelimit provides per-client, per-bucket request quotas backed
// by token buckets. Enforcement is per process instance only.
package ratelimit

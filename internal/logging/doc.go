// Package logging provides leveled logging configured from the DEBUG and
// LOG_LEVEL environment variables. Levels are resolved once, on first use.
package logging

package media

import "fmt"

// DecodeError reports that the input bytes could not be decoded by any
// strategy. No partial surface is produced.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GeometryError reports degenerate or out-of-bounds geometry input.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "invalid geometry: " + e.Reason
}

// CanvasError reports a drawing-surface or encoder failure, including an
// encode that produced no data.
type CanvasError struct {
	Op  string
	Err error
}

func (e *CanvasError) Error() string {
	return fmt.Sprintf("canvas %s failed: %v", e.Op, e.Err)
}

func (e *CanvasError) Unwrap() error { return e.Err }

// UnsupportedTypeError reports an upload of a file type the pipeline does
// not accept. Message is safe to show to the uploader.
type UnsupportedTypeError struct {
	ContentType string
	Message     string
}

func (e *UnsupportedTypeError) Error() string { return e.Message }

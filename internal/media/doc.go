// Package media implements the image normalization pipeline: decoding with
// orientation correction, crop geometry mapping, compositing onto a
// fixed-size surface, and encoding to jpeg, png, or webp.
package media

// Package utils provides conversion helpers for loosely typed values, such as
// amounts and quantities in platform JSON payloads that arrive as numbers on
// one API and strings on another.
package utils

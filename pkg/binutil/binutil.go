// Package binutil decodes fixed-width numbers from byte buffers in either byte order.
//
// Callers guarantee that the buffer holds enough bytes at the given offset; reading
// past the end panics like any other out-of-range slice access.
package binutil

import (
	"encoding/binary"
	"math"
)

// Int8 returns the signed byte at off.
func Int8(b []byte, off int) int8 {
	return int8(b[off])
}

// Uint8 returns the byte at off.
func Uint8(b []byte, off int) uint8 {
	return b[off]
}

// Int16 decodes a signed 16-bit integer.
func Int16(b []byte, off int, order binary.ByteOrder) int16 {
	return int16(order.Uint16(b[off:]))
}

// Uint16 decodes an unsigned 16-bit integer.
func Uint16(b []byte, off int, order binary.ByteOrder) uint16 {
	return order.Uint16(b[off:])
}

// Int32 decodes a signed 32-bit integer.
func Int32(b []byte, off int, order binary.ByteOrder) int32 {
	return int32(order.Uint32(b[off:]))
}

// Uint32 decodes an unsigned 32-bit integer.
func Uint32(b []byte, off int, order binary.ByteOrder) uint32 {
	return order.Uint32(b[off:])
}

// Int64 decodes a signed 64-bit integer.
func Int64(b []byte, off int, order binary.ByteOrder) int64 {
	return int64(order.Uint64(b[off:]))
}

// Float32 reinterprets the 32-bit pattern at off as an IEEE-754 single.
func Float32(b []byte, off int, order binary.ByteOrder) float32 {
	return math.Float32frombits(order.Uint32(b[off:]))
}

// Float64 reinterprets the 64-bit pattern at off as an IEEE-754 double.
func Float64(b []byte, off int, order binary.ByteOrder) float64 {
	return math.Float64frombits(order.Uint64(b[off:]))
}

// Int32LE decodes a little-endian int32.
func Int32LE(b []byte, off int) int32 { return Int32(b, off, binary.LittleEndian) }

// Int32BE decodes a big-endian int32.
func Int32BE(b []byte, off int) int32 { return Int32(b, off, binary.BigEndian) }

// Int64LE decodes a little-endian int64.
func Int64LE(b []byte, off int) int64 { return Int64(b, off, binary.LittleEndian) }

// Int64BE decodes a big-endian int64.
func Int64BE(b []byte, off int) int64 { return Int64(b, off, binary.BigEndian) }

// Float32LE decodes a little-endian float32.
func Float32LE(b []byte, off int) float32 { return Float32(b, off, binary.LittleEndian) }

// Float32BE decodes a big-endian float32.
func Float32BE(b []byte, off int) float32 { return Float32(b, off, binary.BigEndian) }

// Float64LE decodes a little-endian float64.
func Float64LE(b []byte, off int) float64 { return Float64(b, off, binary.LittleEndian) }

// Float64BE decodes a big-endian float64.
func Float64BE(b []byte, off int) float64 { return Float64(b, off, binary.BigEndian) }

// Order returns the byte order for a big-endian flag.
func Order(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

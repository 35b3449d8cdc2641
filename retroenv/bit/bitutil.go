package bit

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// Set will return the passed byte with the bit at the specified index set to 1.
func Set(index, value uint8) uint8 {
	return value | (1 << index)
}

// Reset will return the passed byte with the bit at the specified index set to 0.
func Reset(index, value uint8) uint8 {
	return value & ((1 << index) ^ 0xFF)
}

// IsSet16 checks if the bit at the specified index of a 16 bit value is set.
func IsSet16(index uint8, value uint16) bool {
	return ((value >> index) & 1) == 1
}

// Set16 will return the passed 16 bit value with the bit at the specified index set to 1.
func Set16(index uint8, value uint16) uint16 {
	return value | (1 << index)
}

// Reset16 will return the passed 16 bit value with the bit at the specified index set to 0.
func Reset16(index uint8, value uint16) uint16 {
	return value & ^(uint16(1) << index)
}

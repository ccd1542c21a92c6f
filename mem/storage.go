// Package mem provides the byte-addressable bus memory that descriptor
// rings and frame buffers live in.
package mem

import (
	"encoding/binary"
	"fmt"
)

// Capacity units.
const (
	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

// A Storage keeps the data of the modeled bus memory.
//
// The storage allocates memory in fixed-size units, so a sparse address
// space does not cost host memory for the regions that are never touched.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64][]byte
}

// NewStorage creates a Storage with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		units:    make(map[uint64][]byte),
	}
}

// Capacity returns the total number of addressable bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unitFor(addr uint64) ([]byte, uint64, error) {
	if addr >= s.capacity {
		return nil, 0, fmt.Errorf(
			"address %#x is beyond the storage capacity %#x", addr, s.capacity)
	}

	inUnit := addr % s.unitSize
	base := addr - inUnit

	unit, ok := s.units[base]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.units[base] = unit
	}

	return unit, inUnit, nil
}

// Read returns n bytes starting at addr.
func (s *Storage) Read(addr, n uint64) ([]byte, error) {
	out := make([]byte, n)
	offset := uint64(0)

	for offset < n {
		unit, inUnit, err := s.unitFor(addr + offset)
		if err != nil {
			return nil, err
		}

		copied := copy(out[offset:], unit[inUnit:])
		offset += uint64(copied)
	}

	return out, nil
}

// Write stores data starting at addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	offset := uint64(0)

	for offset < uint64(len(data)) {
		unit, inUnit, err := s.unitFor(addr + offset)
		if err != nil {
			return err
		}

		copied := copy(unit[inUnit:], data[offset:])
		offset += uint64(copied)
	}

	return nil
}

// ReadUint32 reads one little-endian 32-bit word at addr.
func (s *Storage) ReadUint32(addr uint64) (uint32, error) {
	b, err := s.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// WriteUint32 stores one little-endian 32-bit word at addr.
func (s *Storage) WriteUint32(addr uint64, v uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return s.Write(addr, b)
}

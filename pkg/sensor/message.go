package sensor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Kind tags the origin of a Message.
type Kind uint32

// Known sensor kinds. Values match the on-wire tag.
const (
	KindIMU Kind = iota
	KindUltrasonic
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindIMU:
		return "IMU"
	case KindUltrasonic:
		return "ULTRASONIC"
	}
	return fmt.Sprintf("KIND(%d)", uint32(k))
}

// Known returns true for kinds the pipeline can format.
func (k Kind) Known() bool {
	return k == KindIMU || k == KindUltrasonic
}

// Data slot layout.
const (
	// IMU angular rate in deg/s.
	SlotGyroX = 0
	SlotGyroY = 1
	SlotGyroZ = 2
	// SlotDistance is the ultrasonic distance in cm.
	SlotDistance = 0
)

// Message is one timestamped sample. It is copied by value through queues.
type Message struct {
	Kind Kind
	// Timestamp is microseconds on the monotonic clock since boot.
	Timestamp int64
	Data      [4]float32
}

// WireSize is the length of an encoded Message.
const WireSize = 4 + 8 + 4*4

// MarshalBinary encodes the message as a little-endian record:
// kind u32, timestamp i64, data f32[4], without padding.
func (m *Message) MarshalBinary() ([]byte, error) {
	b := make([]byte, WireSize)
	m.put(b)
	return b, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary. Unknown kinds
// are kept as-is.
func (m *Message) UnmarshalBinary(b []byte) error {
	if len(b) < WireSize {
		return fmt.Errorf("sensor message: short buffer %d < %d", len(b), WireSize)
	}
	m.Kind = Kind(binary.LittleEndian.Uint32(b[0:]))
	m.Timestamp = int64(binary.LittleEndian.Uint64(b[4:]))
	for i := range m.Data {
		m.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[12+i*4:]))
	}
	return nil
}

// WriteTo writes the encoded record.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	var b [WireSize]byte
	m.put(b[:])
	n, err := w.Write(b[:])
	return int64(n), err
}

// ReadFrom reads exactly one encoded record.
func (m *Message) ReadFrom(r io.Reader) (int64, error) {
	var b [WireSize]byte
	n, err := io.ReadFull(r, b[:])
	if err != nil {
		return int64(n), err
	}
	return int64(n), m.UnmarshalBinary(b[:])
}

func (m *Message) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], uint32(m.Kind))
	binary.LittleEndian.PutUint64(b[4:], uint64(m.Timestamp))
	for i, v := range m.Data {
		binary.LittleEndian.PutUint32(b[12+i*4:], math.Float32bits(v))
	}
}

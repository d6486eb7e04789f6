package telemetry

import (
	"fmt"

	"github.com/golang/protobuf/proto"

	pb "github.com/robotalks/multisensor/pkg/proto/multisensor/telemetry/v1"
	"github.com/robotalks/multisensor/pkg/sensor"
)

// SampleFrom wraps msg.
func SampleFrom(device string, seq uint64, msg *sensor.Message) *pb.Sample {
	return &pb.Sample{
		Device:    device,
		Kind:      uint32(msg.Kind),
		Timestamp: msg.Timestamp,
		Data:      append([]float32(nil), msg.Data[:]...),
		Seq:       seq,
	}
}

// MessageOf converts a Sample back to a sensor.Message. Data beyond four
// slots is an error.
func MessageOf(s *pb.Sample) (sensor.Message, error) {
	msg := sensor.Message{Kind: sensor.Kind(s.GetKind()), Timestamp: s.GetTimestamp()}
	if len(s.GetData()) > len(msg.Data) {
		return msg, fmt.Errorf("sample has %d data slots", len(s.GetData()))
	}
	copy(msg.Data[:], s.GetData())
	return msg, nil
}

// EncodeSample marshals a Sample.
func EncodeSample(s *pb.Sample) ([]byte, error) {
	return proto.Marshal(s)
}

// DecodeSample unmarshals a Sample.
func DecodeSample(data []byte) (*pb.Sample, error) {
	var s pb.Sample
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

package telemetry

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/protobuf/descriptor"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	pb "github.com/robotalks/multisensor/pkg/proto/multisensor/telemetry/v1"
	"github.com/robotalks/multisensor/pkg/sensor"
)

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic, pattern string
		match          bool
	}{
		{"dev/samples/imu", "dev/samples/imu", true},
		{"dev/samples/imu", "dev/samples/+", true},
		{"dev/samples/imu", "+/samples/+", true},
		{"dev/samples/imu", "dev/#", true},
		{"dev/samples/imu", "#", true},
		{"dev/samples", "dev/samples/+", false},
		{"dev/samples/imu/x", "dev/samples/+", false},
		{"dev/samples/imu", "dev/samples", false},
		{"dev/config/set", "dev/samples/+", false},
	}
	for _, tc := range testCases {
		t.Run(tc.topic+"~"+tc.pattern, func(t *testing.T) {
			require.Equal(t, tc.match, MatchTopic(tc.topic, tc.pattern))
		})
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://user:pw@broker:1883/site/a?client-id=dev1")
	require.NoError(t, err)
	require.Equal(t, "site/a/", prefix)
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp://broker:1883", opts.Servers[0].String())
	require.Equal(t, "user", opts.Username)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, "dev1", opts.ClientID)

	opts, prefix, err = ClientOptionsFromURL("mqtts://broker:8883")
	require.NoError(t, err)
	require.Empty(t, prefix)
	require.Equal(t, "ssl://broker:8883", opts.Servers[0].String())
}

func TestQueueDeliver(t *testing.T) {
	q := &Queue{}
	var lock sync.Mutex
	got := make(map[string][]string)
	record := func(name string) Handler {
		return func(topic string, payload []byte) {
			lock.Lock()
			got[name] = append(got[name], topic+"="+string(payload))
			lock.Unlock()
		}
	}
	exact := q.Sub("dev/config/set", record("exact"))
	q.Sub("+/samples/+", record("wild"))

	require.Equal(t, 1, q.Deliver("dev/config/set", []byte("a")))
	require.Equal(t, 1, q.Deliver("dev/samples/imu", []byte("b")))
	require.Equal(t, 0, q.Deliver("dev/status", []byte("c")))
	require.NoError(t, exact.Close())
	require.Equal(t, 0, q.Deliver("dev/config/set", []byte("d")))

	require.Equal(t, map[string][]string{
		"exact": {"dev/config/set=a"},
		"wild":  {"dev/samples/imu=b"},
	}, got)
}

func TestTopics(t *testing.T) {
	topics := Topics{Device: "dev1"}
	require.Equal(t, "dev1/samples/imu", topics.Sample(sensor.KindIMU))
	require.Equal(t, "dev1/samples/ultrasonic", topics.Sample(sensor.KindUltrasonic))
	require.Equal(t, "dev1/config/set", topics.ConfigSet())
	require.Equal(t, "dev1/status", topics.Status())
	require.True(t, MatchTopic(topics.Sample(sensor.KindIMU), topics.Samples()))
	require.True(t, MatchTopic(topics.Sample(sensor.KindIMU), AllSamples()))
	require.Equal(t, "dev1", DeviceOf(topics.Sample(sensor.KindIMU)))
}

func TestSampleDescriptor(t *testing.T) {
	fd, md := descriptor.ForMessage(&pb.Sample{})
	require.Equal(t, "multisensor/telemetry/v1/sample.proto", fd.GetName())
	require.Equal(t, "multisensor.telemetry.v1", fd.GetPackage())
	require.Equal(t, "Sample", md.GetName())
	fields := md.GetField()
	require.Len(t, fields, 5)
	for n, name := range []string{"device", "kind", "timestamp", "data", "seq"} {
		require.Equal(t, name, fields[n].GetName())
		require.EqualValues(t, n+1, fields[n].GetNumber())
	}
}

func TestSampleCodec(t *testing.T) {
	msg := sensor.Message{Kind: sensor.KindIMU, Timestamp: 123456789, Data: [4]float32{1.5, -2, 3.25, 0}}
	data, err := EncodeSample(SampleFrom("dev1", 7, &msg))
	require.NoError(t, err)
	s, err := DecodeSample(data)
	require.NoError(t, err)
	require.Equal(t, "dev1", s.Device)
	require.EqualValues(t, 7, s.Seq)
	decoded, err := MessageOf(s)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)

	_, err = MessageOf(&pb.Sample{Data: make([]float32, 5)})
	require.Error(t, err)
	_, err = DecodeSample([]byte{0xff})
	require.Error(t, err)
}

type fakePublisher struct {
	lock sync.Mutex
	pubs map[string][][]byte
}

func (p *fakePublisher) Pub(topic string, payload []byte) paho.Token {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.pubs == nil {
		p.pubs = make(map[string][][]byte)
	}
	p.pubs[topic] = append(p.pubs[topic], payload)
	return &paho.DummyToken{}
}

func TestMQTTSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "dev1")
	sink.Timeout = time.Second
	require.NoError(t, sink.WriteSample(&sensor.Message{Kind: sensor.KindIMU, Timestamp: 1}))
	require.NoError(t, sink.WriteSample(&sensor.Message{Kind: sensor.KindUltrasonic, Timestamp: 2, Data: [4]float32{10}}))
	require.EqualValues(t, 2, sink.Published())

	require.Len(t, pub.pubs["dev1/samples/imu"], 1)
	require.Len(t, pub.pubs["dev1/samples/ultrasonic"], 1)
	s, err := DecodeSample(pub.pubs["dev1/samples/ultrasonic"][0])
	require.NoError(t, err)
	require.EqualValues(t, 2, s.Seq)
	require.EqualValues(t, sensor.KindUltrasonic, s.Kind)
	require.Equal(t, []float32{10, 0, 0, 0}, s.Data)
}

func TestRecordLog(t *testing.T) {
	var buf bytes.Buffer
	log := NewRecordLog(&buf)
	msgs := []sensor.Message{
		{Kind: sensor.KindIMU, Timestamp: 1, Data: [4]float32{1, 2, 3}},
		{Kind: sensor.KindUltrasonic, Timestamp: 2, Data: [4]float32{4}},
	}
	for i := range msgs {
		require.NoError(t, log.WriteSample(&msgs[i]))
	}
	require.Equal(t, 2*sensor.WireSize, buf.Len())
	require.NoError(t, log.Close())

	var got []sensor.Message
	require.NoError(t, ReadRecords(bytes.NewReader(buf.Bytes()), func(m *sensor.Message) error {
		got = append(got, *m)
		return nil
	}))
	require.Equal(t, msgs, got)

	err := ReadRecords(bytes.NewReader(buf.Bytes()[:sensor.WireSize+3]), func(*sensor.Message) error { return nil })
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWebsocketHub(t *testing.T) {
	hub := NewWebsocketHub("", "dev1")
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)

	msg := sensor.Message{Kind: sensor.KindUltrasonic, Timestamp: 9, Data: [4]float32{33}}
	require.NoError(t, hub.WriteSample(&msg))

	var data []byte
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.Message.Receive(conn, &data))
	s, err := DecodeSample(data)
	require.NoError(t, err)
	decoded, err := MessageOf(s)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestWebsocketHubDropsOldest(t *testing.T) {
	hub := NewWebsocketHub("", "dev1")
	c := &wsClient{ch: make(chan []byte, 2)}
	hub.clients = map[*wsClient]struct{}{c: {}}
	for ts := int64(1); ts <= 3; ts++ {
		require.NoError(t, hub.WriteSample(&sensor.Message{Timestamp: ts}))
	}
	require.Len(t, c.ch, 2)
	s, err := DecodeSample(<-c.ch)
	require.NoError(t, err)
	require.EqualValues(t, 2, s.Timestamp)
}

package telemetry

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/robotalks/multisensor/pkg/sensor"
)

// RecordLog appends samples as fixed-size wire records.
type RecordLog struct {
	lock   sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewRecordLog writes records to w.
func NewRecordLog(w io.Writer) *RecordLog {
	l := &RecordLog{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// CreateRecordLog opens path for appending.
func CreateRecordLog(path string) (*RecordLog, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return NewRecordLog(f), nil
}

// WriteSample implements pipeline.Sink. Every record is flushed.
func (l *RecordLog) WriteSample(msg *sensor.Message) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if _, err := msg.WriteTo(l.w); err != nil {
		return err
	}
	return l.w.Flush()
}

// Close implements io.Closer.
func (l *RecordLog) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	err := l.w.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadRecords calls fn for each record in r until EOF. A truncated last
// record is reported as io.ErrUnexpectedEOF.
func ReadRecords(r io.Reader, fn func(*sensor.Message) error) error {
	br := bufio.NewReader(r)
	for {
		var msg sensor.Message
		if _, err := msg.ReadFrom(br); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(&msg); err != nil {
			return err
		}
	}
}

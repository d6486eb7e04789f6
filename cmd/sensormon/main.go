package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robotalks/multisensor/pkg/pipeline"
	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/telemetry"
)

//go-build: CGO_ENABLED=0

var (
	mqttURL    = "mqtt://localhost:1883/"
	recordFile string
)

func init() {
	if val := os.Getenv("MULTISENSOR_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&recordFile, "file", recordFile, "Print a record log instead of subscribing.")
}

func printMessage(prefix string, msg *sensor.Message) {
	if line, ok := pipeline.Format(msg); ok {
		log.Printf("%s%s", prefix, line)
		return
	}
	log.Printf("%sunknown sensor type (%d)", prefix, uint32(msg.Kind))
}

func dumpFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()
	err = telemetry.ReadRecords(f, func(msg *sensor.Message) error {
		printMessage("", msg)
		return nil
	})
	if err != nil {
		log.Fatalln(err)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if recordFile != "" {
		dumpFile(recordFile)
		return
	}

	q, err := telemetry.NewQueueFromURL(mqttURL, "sensormon")
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(telemetry.AllSamples(), func(topic string, payload []byte) {
		s, err := telemetry.DecodeSample(payload)
		if err != nil {
			log.Printf("%s: bad sample: %v", topic, err)
			return
		}
		msg, err := telemetry.MessageOf(s)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		printMessage(fmt.Sprintf("%s #%d ", s.Device, s.Seq), &msg)
	})
	q.Sub("+/status", func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, string(payload))
	})
	if err = q.Connect(10 * time.Second); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}

package board

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/multisensor/pkg/cli/sh"
	"github.com/robotalks/multisensor/pkg/pipeline"
	"github.com/robotalks/multisensor/pkg/sensor"
	"github.com/robotalks/multisensor/pkg/sensor/board"
	"github.com/robotalks/multisensor/pkg/sensor/mpu6050"
)

// FormatScan prints the addresses found on the bus.
func FormatScan(addrs []byte) string {
	if len(addrs) == 0 {
		return "no devices found"
	}
	items := make([]string, len(addrs))
	for n, addr := range addrs {
		items[n] = fmt.Sprintf("0x%02x", addr)
	}
	return strings.Join(items, " ")
}

// ReadOnce initializes p and reads a single sample.
func ReadOnce(p sensor.Producer) (*sensor.Message, error) {
	if err := p.Init(); err != nil {
		return nil, fmt.Errorf("%v init: %w", p.Kind(), err)
	}
	var msg sensor.Message
	if err := p.ReadSample(&msg); err != nil {
		return nil, fmt.Errorf("%v read: %w", p.Kind(), err)
	}
	return &msg, nil
}

var (
	// I2CScanCmd probes the configured I2C bus.
	I2CScanCmd = ishell.Cmd{
		Name: "i2c-scan",
		Help: "",
		Func: func(c *ishell.Context) {
			b := board.Default().Open()
			defer b.Close()
			if b.I2C() == nil {
				c.Err(fmt.Errorf("I2C bus %d unavailable", b.Config.I2CBus))
				return
			}
			addrs := mpu6050.Scan(b.I2C())
			if sh.ShellFrom(c).OutputJSON {
				ints := make([]int, len(addrs))
				for n, addr := range addrs {
					ints[n] = int(addr)
				}
				sh.Print(c, ints)
				return
			}
			c.Println(FormatScan(addrs))
		},
	}

	// ReadCmd reads one sample from a sensor on the board.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "imu|ultrasonic",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("sensor expected"))
				return
			}
			b := board.Default().Open()
			defer b.Close()
			var p sensor.Producer
			switch strings.ToLower(c.Args[0]) {
			case "imu":
				p = b.IMU()
			case "ultrasonic", "ultra":
				p = b.Ultrasonic()
			default:
				c.Err(fmt.Errorf("unknown sensor %q", c.Args[0]))
				return
			}
			msg, err := ReadOnce(p)
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				sh.Print(c, msg)
				return
			}
			line, _ := pipeline.Format(msg)
			c.Println(line)
		},
	}
)

func init() {
	sh.AddCmds(
		&I2CScanCmd,
		&ReadCmd,
	)
}

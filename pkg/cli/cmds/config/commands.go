package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/multisensor/pkg/appconfig"
	"github.com/robotalks/multisensor/pkg/cli/sh"
	"github.com/robotalks/multisensor/pkg/nvs"
)

// Snapshot is what show prints.
type Snapshot struct {
	Draft  appconfig.AppConfig `json:"draft"`
	Stored appconfig.AppConfig `json:"stored"`
}

// String implements fmt.Stringer.
func (s Snapshot) String() string {
	return fmt.Sprintf("draft:  %v\nstored: %v", s.Draft, s.Stored)
}

// SetField sets the field named by the stored key.
func SetField(cfg *appconfig.AppConfig, key, value string) error {
	switch key {
	case appconfig.KeySamplePeriod:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		cfg.SamplePeriodMs = uint32(n)
	case appconfig.KeyIMU, appconfig.KeyUltrasonic:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return EnableSensor(cfg, key, b)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// EnableSensor switches a sensor by its name or key.
func EnableSensor(cfg *appconfig.AppConfig, name string, on bool) error {
	switch strings.ToLower(name) {
	case "imu", appconfig.KeyIMU:
		cfg.IMUEnabled = on
	case "ultrasonic", "ultra", appconfig.KeyUltrasonic:
		cfg.UltrasonicEnabled = on
	default:
		return fmt.Errorf("unknown sensor %q", name)
	}
	return nil
}

func enableCmd(on bool) func(c *ishell.Context, st *sh.OpenStore) {
	return func(c *ishell.Context, st *sh.OpenStore) {
		if len(c.Args) == 0 {
			c.Err(fmt.Errorf("sensor expected"))
			return
		}
		for _, name := range c.Args {
			if err := EnableSensor(&st.Draft, name, on); err != nil {
				c.Err(err)
				return
			}
		}
		sh.Print(c, st.Draft)
	}
}

var (
	// ShowCmd prints the draft and the stored config.
	ShowCmd = ishell.Cmd{
		Name:    "show",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			stored, err := st.Store.Load()
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, Snapshot{Draft: st.Draft, Stored: stored})
		}),
	}

	// SetCmd sets a field of the draft.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "KEY VALUE",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("KEY VALUE expected"))
				return
			}
			if err := SetField(&st.Draft, c.Args[0], c.Args[1]); err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, st.Draft)
		}),
	}

	// EnableCmd enables sensors in the draft.
	EnableCmd = ishell.Cmd{
		Name: "enable",
		Help: "SENSOR...",
		Func: sh.MustBeOpen(enableCmd(true)),
	}

	// DisableCmd disables sensors in the draft.
	DisableCmd = ishell.Cmd{
		Name: "disable",
		Help: "SENSOR...",
		Func: sh.MustBeOpen(enableCmd(false)),
	}

	// SaveCmd persists the draft.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			if err := st.Draft.Validate(); err != nil {
				c.Err(err)
				return
			}
			err := st.Store.Save(st.Draft)
			if st.PowerLoss.Lost() {
				st.PowerLoss.Restore()
				c.Println("power lost during save, run show to see what a reboot loads")
			}
			if err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// ResetCmd invalidates the stored config and resets the draft.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			if err := st.Store.Invalidate(); err != nil {
				c.Err(err)
				return
			}
			st.Draft = appconfig.Default()
			c.Println("OK")
		}),
	}

	// KeysCmd lists the raw entries.
	KeysCmd = ishell.Cmd{
		Name:    "keys",
		Aliases: []string{"k"},
		Help:    "[NAMESPACE]",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			ns := appconfig.Namespace
			if len(c.Args) > 0 {
				ns = c.Args[0]
			}
			h, err := st.Partition.Open(ns)
			if err != nil {
				c.Err(err)
				return
			}
			defer h.Close()
			entries, err := h.Entries()
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				if entries == nil {
					entries = []nvs.Entry{}
				}
				sh.Print(c, entries)
				return
			}
			for _, e := range entries {
				c.Printf("%-15s %-4v %d\n", e.Key, e.Type, e.Value)
			}
		}),
	}

	// EraseCmd formats the whole partition.
	EraseCmd = ishell.Cmd{
		Name: "erase",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			if sh.ShellFrom(c).Interactive {
				if c.MultiChoice([]string{"no", "yes"}, "Erase all namespaces?") != 1 {
					return
				}
			}
			if err := st.Partition.Erase(); err != nil {
				c.Err(err)
				return
			}
			if err := st.Store.Init(); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// PowerLossCmd cuts power after N writes of the next save.
	PowerLossCmd = ishell.Cmd{
		Name: "powerloss",
		Help: "N, -1 disarms",
		Func: sh.MustBeOpen(func(c *ishell.Context, st *sh.OpenStore) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("N expected"))
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			st.PowerLoss.Arm(n)
		}),
	}
)

func init() {
	sh.AddCmds(
		&ShowCmd,
		&SetCmd,
		&EnableCmd,
		&DisableCmd,
		&SaveCmd,
		&ResetCmd,
		&KeysCmd,
		&EraseCmd,
		&PowerLossCmd,
	)
}

package power

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
)

// WakeCause tells why the current boot happened.
type WakeCause int

// Wake causes.
const (
	WakeColdBoot WakeCause = iota
	WakeTimer
)

// String implements fmt.Stringer.
func (c WakeCause) String() string {
	switch c {
	case WakeColdBoot:
		return "cold-boot"
	case WakeTimer:
		return "timer"
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (c WakeCause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *WakeCause) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "cold-boot":
		*c = WakeColdBoot
	case "timer":
		*c = WakeTimer
	default:
		return fmt.Errorf("unknown wake cause %q", text)
	}
	return nil
}

// Retained is the state carried across a halt. It is the only state
// surviving a restart besides the persisted configuration.
type Retained struct {
	WakeCause WakeCause `env:"MULTISENSOR_WAKE_CAUSE"`
	BootCount uint32    `env:"MULTISENSOR_BOOT_COUNT"`
}

// Retained environment variable names.
const (
	EnvWakeCause = "MULTISENSOR_WAKE_CAUSE"
	EnvBootCount = "MULTISENSOR_BOOT_COUNT"
)

// LoadRetained reads the retained state from the process environment.
// Missing or malformed values mean a cold boot.
func LoadRetained() Retained {
	var r Retained
	if err := env.Parse(&r); err != nil {
		return Retained{}
	}
	return r
}

// Boot returns the state of the current boot: the counter is advanced.
func (r Retained) Boot() Retained {
	r.BootCount++
	return r
}

// Next returns the state handed over to the boot after a timer halt.
func (r Retained) Next() Retained {
	return Retained{WakeCause: WakeTimer, BootCount: r.BootCount}
}

// Environ returns base with the retained variables replaced.
func (r Retained) Environ(base []string) []string {
	out := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if strings.HasPrefix(kv, EnvWakeCause+"=") || strings.HasPrefix(kv, EnvBootCount+"=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out,
		EnvWakeCause+"="+r.WakeCause.String(),
		EnvBootCount+"="+strconv.FormatUint(uint64(r.BootCount), 10))
}

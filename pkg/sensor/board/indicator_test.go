package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordPin []int

func (p *recordPin) Write(v int) error {
	*p = append(*p, v)
	return nil
}

func TestPinIndicator(t *testing.T) {
	var pin recordPin
	ind := &PinIndicator{Pin: &pin}
	require.NoError(t, ind.Set(true))
	require.NoError(t, ind.Set(false))
	require.Equal(t, recordPin{1, 0}, pin)
	require.NoError(t, NoIndicator.Set(true))
}

func TestConfigDefaults(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, 0x68, conf.IMUAddress)
	require.Equal(t, 16, conf.TrigPin)
	require.Equal(t, 17, conf.EchoPin)
	require.Equal(t, 4, conf.LEDPin)
	conf.LEDPin = -1
	require.Equal(t, 4, Default().LEDPin)
}

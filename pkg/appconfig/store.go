package appconfig

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/multisensor/pkg/nvs"
)

// Persisted layout.
const (
	Namespace = "app_config"

	KeySamplePeriod = "sample_ms"
	KeyIMU          = "ena_imu"
	KeyUltrasonic   = "ena_ultrason"
	KeyValid        = "config_valid"

	markerValid uint8 = 1
)

// Store reads and writes AppConfig in a Partition.
type Store struct {
	Partition nvs.Partition
}

// NewStore creates a Store on p.
func NewStore(p nvs.Partition) *Store {
	return &Store{Partition: p}
}

// Init prepares the partition. A partition reporting no free pages or a
// newer format is erased and initialized once more. Any other failure is
// returned.
func (s *Store) Init() error {
	err := s.Partition.Init()
	if errors.Is(err, nvs.ErrNoFreePages) || errors.Is(err, nvs.ErrNewVersionFound) {
		glog.Warningf("config: storage needs reformat: %v", err)
		if err = s.Partition.Erase(); err != nil {
			return fmt.Errorf("erase storage: %w", err)
		}
		err = s.Partition.Init()
	}
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	return nil
}

// Save persists cfg. The marker is removed before the fields are written
// and set again only after they are committed.
func (s *Store) Save(cfg AppConfig) error {
	h, err := s.Partition.Open(Namespace)
	if err != nil {
		return err
	}
	defer h.Close()

	if err = h.EraseKey(KeyValid); err != nil && !errors.Is(err, nvs.ErrNotFound) {
		return err
	}
	if err = h.SetU32(KeySamplePeriod, cfg.SamplePeriodMs); err != nil {
		return err
	}
	if err = h.SetU8(KeyUltrasonic, boolU8(cfg.UltrasonicEnabled)); err != nil {
		return err
	}
	if err = h.SetU8(KeyIMU, boolU8(cfg.IMUEnabled)); err != nil {
		return err
	}
	if err = h.Commit(); err != nil {
		return err
	}
	if err = h.SetU8(KeyValid, markerValid); err != nil {
		return err
	}
	return h.Commit()
}

// Load returns the stored configuration. Without a valid marker the
// defaults are returned and saved again. A field missing from a valid
// record falls back to its default.
func (s *Store) Load() (AppConfig, error) {
	h, err := s.Partition.Open(Namespace)
	if err != nil {
		return AppConfig{}, err
	}
	defer h.Close()

	valid, err := h.GetU8(KeyValid)
	if err != nil || valid != markerValid {
		if err != nil && !errors.Is(err, nvs.ErrNotFound) {
			glog.Warningf("config: read marker: %v", err)
		}
		glog.Warning("config: incomplete config detected, loading defaults")
		cfg := Default()
		return cfg, s.Save(cfg)
	}

	cfg, def := Default(), Default()
	if v, err := h.GetU32(KeySamplePeriod); err == nil {
		cfg.SamplePeriodMs = v
	} else {
		fieldFallback(KeySamplePeriod, err, def.SamplePeriodMs)
	}
	if v, err := h.GetU8(KeyUltrasonic); err == nil {
		cfg.UltrasonicEnabled = v != 0
	} else {
		fieldFallback(KeyUltrasonic, err, def.UltrasonicEnabled)
	}
	if v, err := h.GetU8(KeyIMU); err == nil {
		cfg.IMUEnabled = v != 0
	} else {
		fieldFallback(KeyIMU, err, def.IMUEnabled)
	}
	return cfg, nil
}

// Invalidate removes the marker so the next Load restores defaults.
func (s *Store) Invalidate() error {
	h, err := s.Partition.Open(Namespace)
	if err != nil {
		return err
	}
	defer h.Close()
	if err = h.EraseKey(KeyValid); err != nil && !errors.Is(err, nvs.ErrNotFound) {
		return err
	}
	return h.Commit()
}

func fieldFallback(key string, err error, def interface{}) {
	glog.Warningf("config: %s unavailable (%v), using default %v", key, err, def)
}

func boolU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

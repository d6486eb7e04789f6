package nvs

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

type partitionFactory struct {
	name string
	// create returns a fresh partition and a func reopening the same
	// storage as after a restart.
	create func(t *testing.T) (Partition, func() Partition)
}

func partitionFactories() []partitionFactory {
	return []partitionFactory{
		{"memory", func(t *testing.T) (Partition, func() Partition) {
			p := NewMemPartition()
			return p, func() Partition { return p }
		}},
		{"bolt", func(t *testing.T) (Partition, func() Partition) {
			path := filepath.Join(t.TempDir(), "nvs.db")
			p := NewBoltPartition(path)
			t.Cleanup(func() { p.Close() })
			return p, func() Partition {
				p.Close()
				p = NewBoltPartition(path)
				return p
			}
		}},
		{"redis", func(t *testing.T) (Partition, func() Partition) {
			mr := miniredis.RunT(t)
			newPart := func() Partition {
				p := NewRedisPartition(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
				t.Cleanup(func() { p.Close() })
				return p
			}
			return newPart(), newPart
		}},
	}
}

func forEachPartition(t *testing.T, fn func(t *testing.T, p Partition, reopen func() Partition)) {
	for _, f := range partitionFactories() {
		t.Run(f.name, func(t *testing.T) {
			p, reopen := f.create(t)
			fn(t, p, reopen)
		})
	}
}

func TestSetGet(t *testing.T) {
	forEachPartition(t, func(t *testing.T, p Partition, reopen func() Partition) {
		require.NoError(t, p.Init())
		h, err := p.Open("app_config")
		require.NoError(t, err)
		require.Equal(t, "app_config", h.Namespace())

		_, err = h.GetU8("missing")
		require.ErrorIs(t, err, ErrNotFound)
		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		require.Equal(t, "missing", keyErr.Key)

		require.NoError(t, h.SetU32("sample_ms", 2500))
		require.NoError(t, h.SetU8("ena_imu", 1))
		require.NoError(t, h.Commit())

		v32, err := h.GetU32("sample_ms")
		require.NoError(t, err)
		require.EqualValues(t, 2500, v32)
		v8, err := h.GetU8("ena_imu")
		require.NoError(t, err)
		require.EqualValues(t, 1, v8)

		_, err = h.GetU8("sample_ms")
		require.ErrorIs(t, err, ErrTypeMismatch)

		require.NoError(t, h.SetU8("sample_ms", 3))
		v8, err = h.GetU8("sample_ms")
		require.NoError(t, err)
		require.EqualValues(t, 3, v8)

		entries, err := h.Entries()
		require.NoError(t, err)
		require.Equal(t, []Entry{
			{Key: "ena_imu", Type: TypeU8, Value: 1},
			{Key: "sample_ms", Type: TypeU8, Value: 3},
		}, entries)

		require.NoError(t, h.EraseKey("ena_imu"))
		require.ErrorIs(t, h.EraseKey("ena_imu"), ErrNotFound)
		_, err = h.GetU8("ena_imu")
		require.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, h.Close())
	})
}

func TestNamespacesAreIsolated(t *testing.T) {
	forEachPartition(t, func(t *testing.T, p Partition, reopen func() Partition) {
		require.NoError(t, p.Init())
		a, err := p.Open("a")
		require.NoError(t, err)
		b, err := p.Open("b")
		require.NoError(t, err)
		require.NoError(t, a.SetU8("k", 1))
		_, err = b.GetU8("k")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWritesSurviveRestart(t *testing.T) {
	forEachPartition(t, func(t *testing.T, p Partition, reopen func() Partition) {
		require.NoError(t, p.Init())
		h, err := p.Open("app_config")
		require.NoError(t, err)
		// no Commit: each write is durable on return.
		require.NoError(t, h.SetU32("sample_ms", 42))

		p = reopen()
		require.NoError(t, p.Init())
		h, err = p.Open("app_config")
		require.NoError(t, err)
		v, err := h.GetU32("sample_ms")
		require.NoError(t, err)
		require.EqualValues(t, 42, v)
	})
}

func TestEraseFormats(t *testing.T) {
	forEachPartition(t, func(t *testing.T, p Partition, reopen func() Partition) {
		require.NoError(t, p.Init())
		h, err := p.Open("app_config")
		require.NoError(t, err)
		require.NoError(t, h.SetU8("config_valid", 1))
		require.NoError(t, p.Erase())
		require.NoError(t, p.Init())
		h, err = p.Open("app_config")
		require.NoError(t, err)
		_, err = h.GetU8("config_valid")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNoFreePages(t *testing.T) {
	forEachPartition(t, func(t *testing.T, p Partition, reopen func() Partition) {
		setMaxEntries(p, 2)
		require.NoError(t, p.Init())
		h, err := p.Open("ns")
		require.NoError(t, err)
		require.NoError(t, h.SetU8("a", 1))
		require.NoError(t, h.SetU8("b", 1))
		require.NoError(t, h.SetU8("b", 2), "overwrite needs no new entry")
		require.ErrorIs(t, h.SetU8("c", 1), ErrNoFreePages)

		p = reopen()
		setMaxEntries(p, 2)
		require.NoError(t, p.Init(), "a full partition stays usable")
		h, err = p.Open("ns")
		require.NoError(t, err)
		require.NoError(t, h.SetU8("a", 3))
		require.NoError(t, h.EraseKey("b"))
		require.NoError(t, h.SetU8("c", 1))

		p = reopen()
		setMaxEntries(p, 1)
		require.ErrorIs(t, p.Init(), ErrNoFreePages)
		require.NoError(t, p.Erase())
		require.NoError(t, p.Init())
	})
}

func setMaxEntries(p Partition, n int) {
	switch v := p.(type) {
	case *MemPartition:
		v.MaxEntries = n
	case *BoltPartition:
		v.MaxEntries = n
	case *RedisPartition:
		v.MaxEntries = n
	}
}

func TestInvalidNames(t *testing.T) {
	p := NewMemPartition()
	require.NoError(t, p.Init())
	_, err := p.Open("")
	require.ErrorIs(t, err, ErrInvalidName)
	_, err = p.Open("_nvs")
	require.ErrorIs(t, err, ErrInvalidName)
	h, err := p.Open("app_config")
	require.NoError(t, err)
	require.ErrorIs(t, h.SetU8("a_key_longer_than_15", 1), ErrInvalidName)
}

func TestMemNewVersionFound(t *testing.T) {
	p := NewMemPartition()
	p.Version = FormatVersion + 1
	require.ErrorIs(t, p.Init(), ErrNewVersionFound)
	_, err := p.Open("ns")
	require.ErrorIs(t, err, ErrNotInitialized)
	require.NoError(t, p.Erase())
	require.NoError(t, p.Init())
}

func TestRedisNewVersionFound(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("test:_nvs", "version", "99")
	p := NewRedisPartition(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	defer p.Close()
	require.ErrorIs(t, p.Init(), ErrNewVersionFound)
	require.NoError(t, p.Erase())
	require.NoError(t, p.Init())
}

func TestEntryEncoding(t *testing.T) {
	b, err := Entry{Type: TypeU32, Value: 0x01020304}.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0x04, 4, 3, 2, 1}, b)
	b, err = Entry{Type: TypeU8, Value: 7}.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 7}, b)

	var e Entry
	require.Error(t, e.UnmarshalBinary([]byte{0x04, 1}))
	require.Error(t, e.UnmarshalBinary([]byte{0x09, 1}))
	require.Error(t, e.UnmarshalBinary(nil))
}

func TestPowerLoss(t *testing.T) {
	mem := NewMemPartition()
	p := NewPowerLoss(mem, 2)
	require.NoError(t, p.Init())
	h, err := p.Open("ns")
	require.NoError(t, err)
	require.NoError(t, h.SetU8("a", 1))
	require.NoError(t, h.SetU8("b", 1))
	require.False(t, p.Lost())
	require.ErrorIs(t, h.SetU8("c", 1), ErrPowerLoss)
	require.True(t, p.Lost())
	require.ErrorIs(t, h.EraseKey("a"), ErrPowerLoss)
	require.ErrorIs(t, h.Commit(), ErrPowerLoss)

	entries, err := h.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	p.Restore()
	require.NoError(t, h.SetU8("c", 1))
	require.NoError(t, h.Commit())
}

func TestOpenURL(t *testing.T) {
	p, err := OpenURL("mem://")
	require.NoError(t, err)
	require.IsType(t, &MemPartition{}, p)

	p, err = OpenURL("bolt:///tmp/x/nvs.db")
	require.NoError(t, err)
	require.Equal(t, "/tmp/x/nvs.db", p.(*BoltPartition).Path)

	p, err = OpenURL("bolt://nvs.db")
	require.NoError(t, err)
	require.Equal(t, "nvs.db", p.(*BoltPartition).Path)

	p, err = OpenURL("redis://localhost:6379/1?prefix=dev1")
	require.NoError(t, err)
	rp := p.(*RedisPartition)
	require.Equal(t, "dev1", rp.Prefix)
	require.Equal(t, 1, rp.Client.Options().DB)
	rp.Close()

	_, err = OpenURL("ftp://x")
	require.Error(t, err)
	_, err = OpenURL("bolt://")
	require.Error(t, err)
}

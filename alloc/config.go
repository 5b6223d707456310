package alloc

import (
	"bytes"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/memkit/arena"
	"github.com/pavanmanishd/memkit/internal/sizes"
)

// Config describes an allocator in YAML:
//
//	kind: arena
//	initial_size: 64KiB
//	guards: basic
type Config struct {
	Kind        string `yaml:"kind"`
	InitialSize string `yaml:"initial_size"`
	Guards      string `yaml:"guards"`
}

// LoadConfig reads a Config from the YAML file at pn.
func LoadConfig(pn string) (Config, error) {
	file, err := os.Open(pn)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()
	return decodeConfig(yaml.NewDecoder(file))
}

// ParseConfig decodes a Config from YAML bytes.
func ParseConfig(b []byte) (Config, error) {
	return decodeConfig(yaml.NewDecoder(bytes.NewReader(b)))
}

func decodeConfig(d *yaml.Decoder) (Config, error) {
	var c Config
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil {
		return Config{}, errors.Wrap(err, "alloc: decode config")
	}
	if _, err := c.kind(); err != nil {
		return Config{}, err
	}
	if _, err := c.size(); err != nil {
		return Config{}, err
	}
	if _, err := c.guards(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) kind() (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(c.Kind)) {
	case "", "heap":
		return KindHeap, nil
	case "arena", "owned-arena":
		return KindOwnedArena, nil
	}
	return 0, errors.Errorf("alloc: unknown allocator kind %q", c.Kind)
}

func (c Config) size() (int, error) {
	if strings.TrimSpace(c.InitialSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.InitialSize)
	if err != nil {
		return 0, errors.Wrapf(err, "alloc: initial_size %q", c.InitialSize)
	}
	if n > sizes.MaxAlloc {
		return 0, errors.Errorf("alloc: initial_size %q too large", c.InitialSize)
	}
	return int(n), nil
}

func (c Config) guards() (arena.GuardMode, error) {
	var m arena.GuardMode
	if err := m.UnmarshalText([]byte(c.Guards)); err != nil {
		return 0, errors.Wrap(err, "alloc: guards")
	}
	return m, nil
}

// New builds the allocator described by c. Extra options are applied to
// arena-backed allocators after the configured guard mode.
func (c Config) New(opts ...arena.Option) (Allocator, error) {
	k, err := c.kind()
	if err != nil {
		return nil, err
	}
	if k == KindHeap {
		return NewHeap(), nil
	}
	size, err := c.size()
	if err != nil {
		return nil, err
	}
	g, err := c.guards()
	if err != nil {
		return nil, err
	}
	o := NewOwnedArena(size, append([]arena.Option{arena.WithGuards(g)}, opts...)...)
	if o.Arena() == nil {
		return nil, errors.Errorf("alloc: cannot allocate initial arena of %s", humanize.IBytes(uint64(size)))
	}
	return o, nil
}

// Package logging hands out zap loggers gated by debug labels.
//
// Debug output is controlled by the MEMKIT_DEBUG environment variable, a
// list of labels such as "ARENA;ALLOC". A logger asked for under a label that
// is not listed discards everything. The label "ALL" enables every logger.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	EnvVar = "MEMKIT_DEBUG"
	ALL    = "ALL"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

func labels() map[string]bool {
	m := make(map[string]bool)
	s := os.Getenv(EnvVar)
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		if l = strings.TrimSpace(l); l != "" {
			m[l] = true
		}
	}
	return m
}

func root() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	}
	return base
}

// Named returns the logger for label, or a no-op logger when the label is
// not enabled.
func Named(label string) *zap.Logger {
	m := labels()
	if !m[label] && !m[ALL] {
		return zap.NewNop()
	}
	return root().Named(strings.ToLower(label))
}

// SetBase replaces the logger enabled labels derive from. Passing nil
// restores the default development logger.
func SetBase(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

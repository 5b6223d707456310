// Package scope runs registered cleanups exactly once, in reverse order of
// registration, on every exit path of a block.
//
//	err := scope.Run(func(s *scope.Scope) error {
//		a := alloc.NewOwnedArena(0)
//		s.Defer(a.Destroy)
//		...
//		return nil
//	})
package scope

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/internal/logging"
)

var log = logging.Named("SCOPE")

// Scope is a stack of cleanups. The zero value is ready to use. It is not
// safe for concurrent use.
type Scope struct {
	fns    []func() error
	closed bool
}

func New() *Scope {
	return &Scope{}
}

// Defer registers f to run when the scope closes.
func (s *Scope) Defer(f func()) {
	s.DeferErr(func() error {
		f()
		return nil
	})
}

// DeferErr registers f; its error is reported by Close. Registering on a
// closed scope runs f immediately.
func (s *Scope) DeferErr(f func() error) {
	if f == nil {
		return
	}
	if s.closed {
		if err := f(); err != nil {
			log.Debug("late cleanup", zap.Error(err))
		}
		return
	}
	s.fns = append(s.fns, f)
}

// Len returns the number of pending cleanups.
func (s *Scope) Len() int { return len(s.fns) }

// Close runs the pending cleanups newest first and combines their errors.
// A panicking cleanup does not stop the older ones; the panic resumes after
// they ran. Later calls return nil.
func (s *Scope) Close() (err error) {
	if s.closed {
		return nil
	}
	s.closed = true
	fns := s.fns
	s.fns = nil
	defer func() {
		log.Debug("close", zap.Int("cleanups", len(fns)), zap.Error(err))
	}()
	unwind(fns, len(fns)-1, &err)
	return err
}

func unwind(fns []func() error, i int, err *error) {
	if i < 0 {
		return
	}
	defer unwind(fns, i-1, err)
	*err = multierr.Append(*err, fns[i]())
}

// Run calls f with a fresh scope and closes the scope however f exits,
// panics included. The result combines f's error with the cleanup errors.
func Run(f func(*Scope) error) (err error) {
	s := New()
	defer func() {
		err = multierr.Append(err, s.Close())
	}()
	return f(s)
}

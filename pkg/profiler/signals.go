package profiler

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const signalBufferSize = 512

// SignalDriver delivers CPU-time interval timer expirations, carried by
// SIGPROF, to the sampler action.
type SignalDriver struct {
	startOnce sync.Once
	ch        chan os.Signal
	action    atomic.Pointer[func()]
}

func NewSignalDriver() *SignalDriver {
	return &SignalDriver{}
}

// SetAction installs fn as the receiver of profiling signal deliveries. The
// delivery loop starts on first use and runs for the process lifetime,
// matching the lifetime of the signal disposition.
func (d *SignalDriver) SetAction(fn func()) error {
	d.action.Store(&fn)
	d.startOnce.Do(func() {
		d.ch = make(chan os.Signal, signalBufferSize)
		signal.Notify(d.ch, unix.SIGPROF)
		go d.deliver()
	})

	return nil
}

// Ignore drops deliveries without changing the signal disposition, catching
// timer expirations still in flight after disarming.
func (d *SignalDriver) Ignore() error {
	d.action.Store(nil)

	return nil
}

// SetInterval arms the ITIMER_PROF timer to fire every period of consumed
// CPU time; zero disarms it.
func (d *SignalDriver) SetInterval(period time.Duration) error {
	tv := unix.NsecToTimeval(period.Nanoseconds())
	_, err := unix.Setitimer(unix.ItimerProf, unix.Itimerval{Interval: tv, Value: tv})
	if err != nil {
		return errors.Wrap(err, "setitimer ITIMER_PROF")
	}

	return nil
}

func (d *SignalDriver) deliver() {
	for range d.ch {
		if fn := d.action.Load(); fn != nil {
			(*fn)()
		}
	}
}

var profSignals = sigset(unix.SIGPROF)

// Block masks the profiling signal for the calling thread.
func Block() error {
	return errors.Wrap(unix.PthreadSigmask(unix.SIG_BLOCK, profSignals, nil), "masking profiling signal")
}

// Unblock clears the profiling signal from the calling thread's mask.
func Unblock() error {
	return errors.Wrap(unix.PthreadSigmask(unix.SIG_UNBLOCK, profSignals, nil), "unmasking profiling signal")
}

// GuardFork brackets a host-initiated fork with Block and Unblock on the
// calling thread. A fork taking longer than the sampling period would
// otherwise be interrupted by the timer while holding allocator locks that
// the child inherits, and hang. Forks are deliberately not sampled.
func GuardFork(fork func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := Block(); err != nil {
		return err
	}
	defer func() {
		_ = Unblock()
	}()

	return fork()
}

func sigset(sig unix.Signal) *unix.Sigset_t {
	var set unix.Sigset_t
	s := uint(sig) - 1
	set.Val[s/64] |= 1 << (s % 64)

	return &set
}

package pluginctx

import (
	"bufio"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// KeyboardContext puts the controlling terminal into raw mode and
// broadcasts each key it reads as a ("keyboard", key) event — the direct
// analogue of the original interpreter's pynput-based key listener that
// called executor.broadcast("keyboard", key.name or key.char) from a
// background thread.
type KeyboardContext struct {
	fd       int
	oldState *term.State
	stop     chan struct{}
	wg       sync.WaitGroup
}

func (*KeyboardContext) Name() string { return "keyboard" }

func (k *KeyboardContext) Acquire(broadcast func(topic, message string)) error {
	k.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(k.fd) {
		// Not attached to a terminal (e.g. running under a test harness
		// or piped input) — acquire succeeds as a no-op rather than
		// failing the whole run.
		return nil
	}
	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		return err
	}
	k.oldState = oldState
	k.stop = make(chan struct{})
	k.wg.Add(1)
	go k.readLoop(broadcast)
	return nil
}

func (k *KeyboardContext) readLoop(broadcast func(topic, message string)) {
	defer k.wg.Done()
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-k.stop:
			return
		default:
		}
		r, _, err := reader.ReadRune()
		if err != nil {
			return
		}
		broadcast("keyboard", keyName(r))
	}
}

// keyName maps a raw terminal rune to the editor's key-option vocabulary:
// enter, space and escape are named, and every other rune reports itself.
// Arrow keys are not recognised; their escape sequences arrive as separate
// runes, the first of which reports as "escape".
func keyName(r rune) string {
	switch r {
	case '\r', '\n':
		return "enter"
	case ' ':
		return "space"
	case 27:
		return "escape"
	default:
		return string(r)
	}
}

func (k *KeyboardContext) Release() error {
	if k.oldState == nil {
		return nil
	}
	close(k.stop)
	// readLoop is blocked in a syscall read; closing stop alone can't
	// unblock it, so force the pending read to return an error too.
	_ = os.Stdin.SetReadDeadline(time.Now())
	err := term.Restore(k.fd, k.oldState)
	k.wg.Wait()
	return err
}

package pluginctx

import "github.com/atotto/clipboard"

// ClipboardContext exposes the host clipboard to blocks that read or
// write it. It has no background work to do on Acquire/Release — reads
// and writes go straight through to atotto/clipboard — but participates
// in the same acquire/release lifecycle as every other plugin context so
// program code never distinguishes "always available" resources from
// ones that need setup.
type ClipboardContext struct{}

func (ClipboardContext) Name() string { return "clipboard" }

func (ClipboardContext) Acquire(func(topic, message string)) error { return nil }

func (ClipboardContext) Release() error { return nil }

// Read returns the current clipboard contents.
func (ClipboardContext) Read() (string, error) {
	return clipboard.ReadAll()
}

// Write replaces the clipboard contents.
func (ClipboardContext) Write(text string) error {
	return clipboard.WriteAll(text)
}

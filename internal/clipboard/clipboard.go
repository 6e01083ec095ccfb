// Package clipboard abstracts the system clipboard so workflows can
// report copy success or failure without touching the OS in tests.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Writer writes text to a clipboard-like destination.
type Writer interface {
	WriteText(text string) error
}

// System writes to the OS clipboard.
type System struct{}

func (System) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Memory is an in-process clipboard for tests. Set Err to make writes
// fail.
type Memory struct {
	mu   sync.Mutex
	text string

	Err error
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	return nil
}

// Text returns the last successfully written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

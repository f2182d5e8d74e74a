// Package extract scrapes QoR metrics from the free-form text an external
// synthesis tool prints. Matching rules live behind the Extractor interface so
// a rule set for a different tool version can be registered without touching
// callers.
package extract

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/daryltucker/eda-runner/internal/model"
)

// ErrNotParseable means the output format was not understood. It is distinct
// from the tool failing to execute.
var ErrNotParseable = errors.New("tool output not parseable")

// Extractor turns captured tool output into Metrics.
type Extractor interface {
	Name() string
	Extract(out model.ToolOutput) (model.Metrics, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Extractor{}
)

// Register makes an extractor available to Lookup. A later registration with
// the same name replaces the earlier one.
func Register(e Extractor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[e.Name()] = e
}

// Lookup returns the extractor registered under name.
func Lookup(name string) (Extractor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q (available: %v)", name, namesLocked())
	}
	return e, nil
}

// Names lists registered extractors in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Yosys{})
}

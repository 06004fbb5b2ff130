package probes

import (
	"fmt"

	"github.com/gartfeo/navlink/util"
)

// probe ids as shown in scan results
const (
	ProbeMavlink = "mavlink"
	ProbeSITL    = "sitl"
)

// Result is a successful probe of a single host and port
type Result struct {
	Host    string
	Port    int
	ID      string
	Details interface{}
}

type Handler interface {
	Probe(log *util.Logger, host string) []Result
}

type HandlerRegistry map[string]func(map[string]interface{}) (Handler, error)

var Registry HandlerRegistry = make(map[string]func(map[string]interface{}) (Handler, error))

func (r HandlerRegistry) Add(name string, factory func(map[string]interface{}) (Handler, error)) {
	if _, exists := r[name]; exists {
		panic(fmt.Sprintf("cannot register duplicate probe type: %s", name))
	}
	r[name] = factory
}

func (r HandlerRegistry) Get(name string) (func(map[string]interface{}) (Handler, error), error) {
	factory, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("probe type not registered: %s", name)
	}
	return factory, nil
}

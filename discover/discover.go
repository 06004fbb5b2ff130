// Package discover scans hosts for live MAVLink endpoints: router UDP ports
// answering a heartbeat and SITL TCP console ports. It tells apart occupied
// and free ports when simulation restarts leave stale listeners behind.
package discover

import (
	"sync"

	"github.com/gartfeo/navlink/discover/probes"
	"github.com/gartfeo/navlink/util"
)

// Result is a successful probe hit
type Result = probes.Result

type probePlan struct {
	id     string
	typ    string
	config map[string]interface{}
}

// defaultPlan covers the ports run_swarm.sh hands to mavlink-router and SITL
var defaultPlan = []probePlan{
	{probes.ProbeMavlink, "mavlink", map[string]interface{}{
		"ports": []int{14550, 14551, 14555, 14560, 14570},
	}},
	{probes.ProbeSITL, "tcp", map[string]interface{}{
		"ports": []int{5760, 5762, 5763},
	}},
}

// Work probes all hosts with the default plan using num workers
func Work(log *util.Logger, num int, hosts []string) []Result {
	handlers := make(map[string]probes.Handler)
	for _, plan := range defaultPlan {
		factory, err := probes.Registry.Get(plan.typ)
		if err != nil {
			log.FATAL.Fatal(err)
		}

		handler, err := factory(plan.config)
		if err != nil {
			log.FATAL.Fatal(err)
		}

		handlers[plan.id] = handler
	}

	work := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	wg.Add(num)
	for i := 0; i < num; i++ {
		go func() {
			defer wg.Done()
			for host := range work {
				for id, handler := range handlers {
					for _, hit := range handler.Probe(log, host) {
						hit.ID = id
						results <- hit
					}
				}
			}
		}()
	}

	go func() {
		for _, host := range hosts {
			work <- host
		}
		close(work)
		wg.Wait()
		close(results)
	}()

	var res []Result
	for hit := range results {
		log.INFO.Printf("%s:%d %s %v", hit.Host, hit.Port, hit.ID, hit.Details)
		res = append(res, hit)
	}

	return res
}

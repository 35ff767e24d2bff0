package asr

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/kuroonai/submaker/pkg/utils"
)

// ServiceCreator builds a Service instance for one audio file.
type ServiceCreator func(audioPath string, useCache bool) (Service, error)

// ServiceStats tracks how a registered service has been performing.
type ServiceStats struct {
	SuccessCount int
	TotalCount   int
	Available    bool
}

// Selector is a registry of recognition services with availability tracking
// and two pick strategies. One registered service is the common case, but
// the seams for alternates are kept.
type Selector struct {
	mu              sync.RWMutex
	services        map[string]ServiceCreator
	weights         map[string]int
	counters        map[string]int
	stats           map[string]*ServiceStats
	roundRobinIndex int
	serviceList     []string
}

// NewSelector creates an empty service registry.
func NewSelector() *Selector {
	return &Selector{
		services:    make(map[string]ServiceCreator),
		weights:     make(map[string]int),
		counters:    make(map[string]int),
		stats:       make(map[string]*ServiceStats),
		serviceList: make([]string, 0),
	}
}

// RegisterService adds a named service with a selection weight.
func (s *Selector) RegisterService(name string, creator ServiceCreator, weight int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.services[name] = creator
	s.weights[name] = weight
	s.counters[name] = 0
	s.stats[name] = &ServiceStats{Available: true}
	s.serviceList = append(s.serviceList, name)

	utils.Debug("registered speech service: %s, weight %d", name, weight)
}

// Resolve picks a service. "auto" goes through the weighted-random strategy;
// any other name must be registered.
func (s *Selector) Resolve(serviceName string) (string, ServiceCreator, error) {
	if serviceName == "auto" {
		name, creator, ok := s.SelectService("weighted_random")
		if !ok {
			return "", nil, fmt.Errorf("no speech service available")
		}
		return name, creator, nil
	}

	s.mu.RLock()
	creator, ok := s.services[serviceName]
	s.mu.RUnlock()

	if !ok {
		return "", nil, fmt.Errorf("unknown speech service: %s", serviceName)
	}
	return serviceName, creator, nil
}

// ReportResult feeds back whether a call succeeded. A service whose success
// rate collapses is taken out of rotation until it succeeds again.
func (s *Selector) ReportResult(serviceName string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, exists := s.stats[serviceName]
	if !exists {
		return
	}

	if success {
		stat.SuccessCount++
	}
	stat.TotalCount++

	if !success && stat.TotalCount > 5 && float64(stat.SuccessCount)/float64(stat.TotalCount) < 0.2 {
		stat.Available = false
		utils.Warn("speech service %s success rate too low, disabling", serviceName)
	} else if success && !stat.Available {
		stat.Available = true
		utils.Info("speech service %s available again", serviceName)
	}
}

// SelectService selects among the available services using the given
// strategy ("round_robin" or weighted random by default).
func (s *Selector) SelectService(strategy string) (string, ServiceCreator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.services) == 0 {
		return "", nil, false
	}

	switch strategy {
	case "round_robin":
		return s.selectByRoundRobin()
	default:
		return s.selectByWeightedRandom()
	}
}

func (s *Selector) selectByRoundRobin() (string, ServiceCreator, bool) {
	available := make([]string, 0, len(s.serviceList))
	for _, name := range s.serviceList {
		if s.stats[name].Available {
			available = append(available, name)
		}
	}

	if len(available) == 0 {
		return "", nil, false
	}

	s.roundRobinIndex = (s.roundRobinIndex + 1) % len(available)
	selected := available[s.roundRobinIndex]
	s.counters[selected]++

	return selected, s.services[selected], true
}

func (s *Selector) selectByWeightedRandom() (string, ServiceCreator, bool) {
	totalWeight := 0
	for name, weight := range s.weights {
		if s.stats[name].Available {
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return "", nil, false
	}

	r := rand.Intn(totalWeight)
	cumWeight := 0
	for _, name := range s.serviceList {
		if !s.stats[name].Available {
			continue
		}
		cumWeight += s.weights[name]
		if r < cumWeight {
			s.counters[name]++
			return name, s.services[name], true
		}
	}

	for _, name := range s.serviceList {
		if s.stats[name].Available {
			s.counters[name]++
			return name, s.services[name], true
		}
	}

	return "", nil, false
}

// GetStats returns a per-service usage and health snapshot.
func (s *Selector) GetStats() map[string]map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]map[string]interface{})
	for name, stat := range s.stats {
		successRate := 0.0
		if stat.TotalCount > 0 {
			successRate = float64(stat.SuccessCount) / float64(stat.TotalCount) * 100
		}

		result[name] = map[string]interface{}{
			"count":        s.counters[name],
			"success_rate": fmt.Sprintf("%.1f%%", successRate),
			"available":    stat.Available,
			"weight":       s.weights[name],
		}
	}

	return result
}

package ecs

import "math"

const (
	DefaultFixedStep        = 1.0 / 60.0
	DefaultMaxStepsPerFrame = 5
)

// Scheduler runs frame systems once per Advance and fixed systems at a
// constant rate driven by an accumulator. After every fixed step it drains
// the deferred queue and then flushes the event bus.
type Scheduler struct {
	frame []System
	fixed []System

	fixedStep   float64
	maxSteps    int
	accumulator float64
}

func NewScheduler(fixedStep float64, maxStepsPerFrame int) *Scheduler {
	if fixedStep <= 0 || math.IsNaN(fixedStep) {
		fixedStep = DefaultFixedStep
	}
	if maxStepsPerFrame <= 0 {
		maxStepsPerFrame = DefaultMaxStepsPerFrame
	}
	return &Scheduler{fixedStep: fixedStep, maxSteps: maxStepsPerFrame}
}

// AddFrame appends a system that runs once per Advance with the frame delta.
func (s *Scheduler) AddFrame(system System) {
	if system == nil {
		return
	}
	s.frame = append(s.frame, system)
}

// AddFixed appends a system to the fixed-step phase. Order of insertion is
// execution order.
func (s *Scheduler) AddFixed(system System) {
	if system == nil {
		return
	}
	s.fixed = append(s.fixed, system)
}

func (s *Scheduler) FixedStep() float64 {
	return s.fixedStep
}

// Advance runs frame systems and as many fixed steps as the accumulated time
// allows, up to the per-frame cap. Time beyond the cap is dropped. It returns
// the number of fixed steps run.
func (s *Scheduler) Advance(w *World, frameDt float64) int {
	if w == nil {
		return 0
	}
	if frameDt < 0 || math.IsNaN(frameDt) {
		frameDt = 0
	}
	w.delta = frameDt
	for _, system := range s.frame {
		system.Update(w)
	}

	s.accumulator += frameDt
	steps := 0
	for s.accumulator >= s.fixedStep && steps < s.maxSteps {
		s.Step(w)
		s.accumulator -= s.fixedStep
		steps++
	}
	if steps == s.maxSteps && s.accumulator >= s.fixedStep {
		s.accumulator = math.Mod(s.accumulator, s.fixedStep)
	}
	return steps
}

// Step runs exactly one fixed step.
func (s *Scheduler) Step(w *World) {
	if w == nil {
		return
	}
	w.delta = s.fixedStep
	for _, system := range s.fixed {
		system.Update(w)
	}
	w.deferred.Drain(w)
	w.events.Flush()
	w.step++
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.frame)+len(s.fixed))
	systems = append(systems, s.frame...)
	return append(systems, s.fixed...)
}

package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name  string
	err   error
	calls int
}

func (s *stubJob) Name() string { return s.name }
func (s *stubJob) Run(context.Context) error {
	s.calls++
	return s.err
}

func TestRegistryKeepsOrder(t *testing.T) {
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry, err := NewRegistry(jobA, nil, jobB)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
	if got, ok := registry.Lookup("b"); !ok || got != jobB {
		t.Fatalf("lookup b failed")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatalf("lookup of unknown job should fail")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	if _, err := NewRegistry(&stubJob{name: "dup"}, &stubJob{name: "dup"}); err == nil {
		t.Fatalf("expected duplicate job names to fail")
	}
}

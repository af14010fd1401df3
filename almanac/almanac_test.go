package almanac

import (
	"context"
	"errors"
	"testing"
)

func TestRuntimeFactRoundTrip(t *testing.T) {
	s := New()
	s.AddRuntimeFact("answer", 42)
	got, err := s.FactValue(context.Background(), "answer")
	if err != nil {
		t.Fatalf("fact value: %v", err)
	}
	if got.(int) != 42 {
		t.Fatalf("got %v", got)
	}
}

func TestUnknownFact(t *testing.T) {
	s := New()
	if _, err := s.FactValue(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown fact")
	}
}

func TestSupplierMemoized(t *testing.T) {
	s := New()
	calls := 0
	s.RegisterSupplier("corpus", func(ctx context.Context) (interface{}, error) {
		calls++
		return []string{"a"}, nil
	})
	for i := 0; i < 3; i++ {
		if _, err := s.FactValue(context.Background(), "corpus"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("supplier ran %d times", calls)
	}
}

func TestSupplierErrorPropagates(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	s.RegisterSupplier("corpus", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	if _, err := s.FactValue(context.Background(), "corpus"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRuntimeFactShadowsSupplier(t *testing.T) {
	s := New()
	s.RegisterSupplier("fact", func(ctx context.Context) (interface{}, error) {
		return "from supplier", nil
	})
	s.AddRuntimeFact("fact", "runtime")
	got, err := s.FactValue(context.Background(), "fact")
	if err != nil || got.(string) != "runtime" {
		t.Fatalf("got %v %v", got, err)
	}
}

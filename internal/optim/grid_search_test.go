package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dotdrop/internal/config"
)

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Linspace = %v, want %v", got, want)
		}
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("single point = %v", got)
	}
}

func TestNewGridSearchRejectsUnknownParam(t *testing.T) {
	if _, err := NewGridSearch([]string{"warp"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for unknown param")
	}
	if _, err := NewGridSearch([]string{"gravity"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
}

func TestGridSearchFindsMinimum(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"restitution", "friction"},
		[][]float64{{0.2, 0.5, 0.8}, {0.1, 0.3}},
	)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	base := config.DefaultConfig()
	params, best, err := g.Search(context.Background(), base, func(ctx context.Context, cfg *config.Config) (float64, error) {
		calls++
		return math.Abs(cfg.Physics.Restitution-0.5) + cfg.Physics.Friction, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 6 {
		t.Errorf("expected 6 evaluations, got %d", calls)
	}
	if params["restitution"] != 0.5 || params["friction"] != 0.1 {
		t.Errorf("unexpected best params %v", params)
	}
	if math.Abs(best-0.1) > 1e-12 {
		t.Errorf("best = %v, want 0.1", best)
	}
	if base.Physics.Restitution != config.DefaultConfig().Physics.Restitution {
		t.Error("expected base config untouched")
	}
}

func TestGridSearchSkipsInvalid(t *testing.T) {
	g, _ := NewGridSearch([]string{"radius"}, [][]float64{{-5}})
	_, _, err := g.Search(context.Background(), config.DefaultConfig(), func(context.Context, *config.Config) (float64, error) {
		return 0, nil
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	g, _ := NewGridSearch([]string{"gravity"}, [][]float64{{100, 200}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := g.Search(ctx, config.DefaultConfig(), func(context.Context, *config.Config) (float64, error) {
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

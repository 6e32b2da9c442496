package gameloop

import (
	"strings"
	"testing"
)

func TestGuardNoAdviceWhenFresh(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice, got %q", advice)
	}

	g.Record(ActionA)
	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice after one action, got %q", advice)
	}
}

func TestGuardConsecutiveRepeatAdvice(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	g.Record(ActionA)
	g.Record(ActionA)

	advice := g.Advice()
	if advice == "" {
		t.Fatal("expected advice on the third attempt after two identical choices")
	}
	if !strings.Contains(advice, "A") {
		t.Errorf("advice should name the repeated action: %q", advice)
	}
}

func TestGuardRepeatBrokenByDifferentAction(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	g.Record(ActionA)
	g.Record(ActionA)
	g.Record(ActionUp)
	g.Record(ActionStart)

	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice after varied actions, got %q", advice)
	}
}

func TestGuardAlternationAdvice(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	for _, a := range []Action{ActionA, ActionB, ActionA, ActionB} {
		g.Record(a)
	}

	advice := g.Advice()
	if advice == "" {
		t.Fatal("expected alternation advice")
	}
	if !strings.Contains(advice, "A") || !strings.Contains(advice, "B") {
		t.Errorf("alternation advice should name both actions: %q", advice)
	}
}

func TestGuardNoAlternationAdviceWithThirdAction(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	for _, a := range []Action{ActionA, ActionB, ActionA, ActionB, ActionUp} {
		g.Record(a)
	}
	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice once a third action enters the window, got %q", advice)
	}
}

func TestGuardSaturationWipesWindow(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	for i := 0; i < 9; i++ {
		g.Record(ActionStart)
	}

	if counts := g.Counts(); len(counts) != 0 {
		t.Errorf("expected counts wiped past the saturation ceiling, got %v", counts)
	}
	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice after wipe, got %q", advice)
	}
}

func TestGuardLastAction(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	if g.LastAction() != "" {
		t.Error("expected empty last action on a fresh guard")
	}
	g.Record(ActionLeft)
	if g.LastAction() != ActionLeft {
		t.Errorf("expected LEFT, got %q", g.LastAction())
	}
}

func TestGuardReset(t *testing.T) {
	g := NewRepetitionGuard(DefaultGuardConfig())
	g.Record(ActionA)
	g.Record(ActionA)
	g.Reset()

	if advice := g.Advice(); advice != "" {
		t.Errorf("expected no advice after reset, got %q", advice)
	}
	if len(g.Counts()) != 0 {
		t.Error("expected counts cleared after reset")
	}
}

package blaze

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	s := NewSprite(nil, 10, 20)
	g := TweenPosition(s, 100, 200, 1.0, ease.Linear)

	g.Update(0.5)
	if g.Done {
		t.Fatal("Done after half the duration")
	}
	if math.Abs(s.Position.X-55) > 0.5 {
		t.Errorf("X at half = %f, want ~55", s.Position.X)
	}
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(s.Position.X-100) > 0.5 || math.Abs(s.Position.Y-200) > 0.5 {
		t.Errorf("position = %v, want ~(100,200)", s.Position)
	}
}

func TestTweenScaleStartsFromOne(t *testing.T) {
	s := NewSprite(nil, 0, 0)
	g := TweenScale(s, 2.0, 3.0, 0.5, ease.Linear)
	if s.Scale == nil || *s.Scale != (Vec2{1, 1}) {
		t.Fatalf("Scale = %v, want (1,1)", s.Scale)
	}
	g.Update(0.25)
	g.Update(0.25)
	if !g.Done {
		t.Fatal("expected Done")
	}
	if math.Abs(s.Scale.X-2) > 0.01 || math.Abs(s.Scale.Y-3) > 0.01 {
		t.Errorf("Scale = %v, want ~(2,3)", *s.Scale)
	}
}

func TestTweenRotation(t *testing.T) {
	s := NewSprite(nil, 0, 0)
	g := TweenRotation(s, math.Pi, 1.0, ease.Linear)
	g.Update(1.0)
	if !g.Done || math.Abs(s.Rotation-math.Pi) > 0.01 {
		t.Errorf("Rotation = %f, Done = %v", s.Rotation, g.Done)
	}
}

func TestTweenColor(t *testing.T) {
	s := NewSprite(nil, 0, 0)
	g := TweenColor(s, Color{R: 0.5, G: 0, B: 0.25, A: 0}, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)
	want := Color{R: 0.5, G: 0, B: 0.25, A: 0}
	got := s.Color
	if math.Abs(float64(got.R-want.R)) > 0.01 || math.Abs(float64(got.G-want.G)) > 0.01 ||
		math.Abs(float64(got.B-want.B)) > 0.01 || math.Abs(float64(got.A-want.A)) > 0.01 {
		t.Errorf("Color = %v, want %v", got, want)
	}
}

func TestTweenGroupStopsWhenDone(t *testing.T) {
	s := NewSprite(nil, 0, 0)
	g := TweenPosition(s, 10, 0, 0.5, ease.Linear)
	g.Update(1)
	s.Position.X = -1
	g.Update(1)
	if s.Position.X != -1 {
		t.Error("finished group kept writing values")
	}
}

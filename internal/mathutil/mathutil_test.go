package mathutil

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got, want := a.Add(b), (Vec3{5, 7, 9}); got != want {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
	if got, want := b.Sub(a), (Vec3{3, 3, 3}); got != want {
		t.Errorf("Sub: expected %v, got %v", want, got)
	}
	if got, want := a.Mul(b), (Vec3{4, 10, 18}); got != want {
		t.Errorf("Mul: expected %v, got %v", want, got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}
	if got, want := (Vec3{1, 0, 0}).Cross(Vec3{0, 1, 0}), (Vec3{0, 0, 1}); got != want {
		t.Errorf("Cross: expected %v, got %v", want, got)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	if got := (Vec3{}).Normalize(); !got.IsZero() {
		t.Errorf("Normalize(0): expected zero vector, got %v", got)
	}
	n := Vec3{3, 4, 0}.Normalize()
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("Normalize: expected unit length, got %v", n.Len())
	}
}

func TestReflect(t *testing.T) {
	// Incoming straight down onto a floor bounces straight up.
	got := Reflect(Vec3{0, -1, 0}, Vec3{0, 1, 0})
	if got != (Vec3{0, 1, 0}) {
		t.Errorf("Reflect: expected (0,1,0), got %v", got)
	}
	got = Reflect(Vec3{1, -1, 0}, Vec3{0, 1, 0})
	if got != (Vec3{1, 1, 0}) {
		t.Errorf("Reflect: expected (1,1,0), got %v", got)
	}
}

func TestScalarHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"saturate below", Saturate(-2), 0},
		{"saturate above", Saturate(3), 1},
		{"lerp", Lerp(10, 5, 0.5), 7.5},
		{"linstep low", Linstep(0.85, 1, 0.5), 0},
		{"linstep mid", Linstep(0.5, 1, 0.75), 0.5},
		{"linstep high", Linstep(0.85, 1, 1), 1},
		{"pow5", Pow5(0.5), 0.03125},
		{"guard zero", Guard(0), Epsilon},
		{"guard negative", Guard(-1e-12), -Epsilon},
		{"guard passthrough", Guard(0.25), 0.25},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestTBNTranspose(t *testing.T) {
	tangent := Vec3{1, 0, 0}
	bitangent := Vec3{0, 0, -1}
	normal := Vec3{0, 1, 0}
	tbn := Mat3FromColumns(tangent, bitangent, normal)

	// Transposed TBN projects a world vector onto (T, B, N).
	v := Vec3{0.2, 0.9, -0.4}
	got := tbn.Transpose().MulVec3(v)
	want := Vec3{v.Dot(tangent), v.Dot(bitangent), v.Dot(normal)}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("tangent-space projection: expected %v, got %v", want, got)
		}
	}
}

func TestEulerDegRotatesY(t *testing.T) {
	got := EulerDeg(Vec3{0, 90, 0}).MulVec3(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("EulerDeg(0,90,0)·X: expected %v, got %v", want, got)
		}
	}
}

func TestEulerDegAppliesXFirst(t *testing.T) {
	// X about X stays put, then Z turns it onto Y. Applying Z first would
	// land on Z instead.
	got := EulerDeg(Vec3{90, 0, 90}).MulVec3(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("EulerDeg(90,0,90)·X: expected %v, got %v", want, got)
		}
	}

	scaled := Mat3Mul(EulerDeg(Vec3{0, 0, 90}), Mat3Scale(2)).MulVec3(Vec3{1, 0, 0})
	if math.Abs(scaled[1]-2) > 1e-12 || math.Abs(scaled[0]) > 1e-12 {
		t.Errorf("rotate·scale: expected (0,2,0), got %v", scaled)
	}
}

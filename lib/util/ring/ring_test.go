package ring

import "testing"

func assertSome[T comparable](t *testing.T, f func() (T, bool), value T) {
	v, ok := f()
	if !ok {
		t.Error("expected items but got nothing")
		return
	}
	if v != value {
		t.Error("expected", value, "but got", v)
		return
	}
}

func assertNone[T any](t *testing.T, f func() (T, bool)) {
	v, ok := f()
	if ok {
		t.Error("expected no items but found", v)
		return
	}
}

func assertLength[T any](t *testing.T, ring *Ring[T], length int) {
	l := ring.Length()
	if length != l {
		t.Error("expected length to be", length, "but got", l)
	}
}

func TestRing_Queue(t *testing.T) {
	var r Ring[int]
	r.PushBack(1)
	r.PushBack(2)
	r.PushBack(3)
	assertLength(t, &r, 3)
	assertSome(t, r.PopFront, 1)
	assertSome(t, r.PopFront, 2)
	assertSome(t, r.PopFront, 3)
	assertNone[int](t, r.PopFront)
}

func TestRing_Stack(t *testing.T) {
	var r Ring[int]
	r.PushFront(1)
	r.PushFront(2)
	r.PushFront(3)
	assertSome(t, r.PopFront, 3)
	assertSome(t, r.PopFront, 2)
	assertSome(t, r.PopFront, 1)
	assertNone[int](t, r.PopFront)
}

func TestRing_Mixed(t *testing.T) {
	var r Ring[int]
	r.PushBack(2)
	r.PushFront(1)
	r.PushBack(3)
	assertSome(t, r.PopBack, 3)
	assertSome(t, r.PopFront, 1)
	assertSome(t, r.PopFront, 2)
	assertNone[int](t, r.PopBack)
}

func TestRing_Grow(t *testing.T) {
	var r Ring[int]
	for i := 0; i < 100; i++ {
		r.PushBack(i)
	}
	// rotate so head is in the middle of the buffer, then force growth
	for i := 0; i < 50; i++ {
		v, _ := r.PopFront()
		r.PushBack(v)
	}
	for i := 100; i < 200; i++ {
		r.PushBack(i)
	}
	assertLength(t, &r, 200)
	for i := 50; i < 100; i++ {
		assertSome(t, r.PopFront, i)
	}
	for i := 0; i < 50; i++ {
		assertSome(t, r.PopFront, i)
	}
	for i := 100; i < 200; i++ {
		assertSome(t, r.PopFront, i)
	}
	assertNone[int](t, r.PopFront)
}

func TestRing_Clear(t *testing.T) {
	var r Ring[int]
	r.PushBack(1)
	r.PushBack(2)
	r.Clear()
	assertLength(t, &r, 0)
	assertNone[int](t, r.PopFront)
}

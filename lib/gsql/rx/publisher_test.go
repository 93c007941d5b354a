package rx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBlock_Just(t *testing.T) {
	v, err := Block(context.Background(), Just(42))
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Error("expected 42, got", v)
	}
}

func TestBlock_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Block(context.Background(), Error[int](boom))
	if !errors.Is(err, boom) {
		t.Error("expected boom, got", err)
	}
}

func TestBlock_Func(t *testing.T) {
	p := Func[string](func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	v, err := Block(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Error("expected hello, got", v)
	}
}

func TestBlock_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Func[int](func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	if _, err := Block(ctx, p); !errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled, got", err)
	}
}

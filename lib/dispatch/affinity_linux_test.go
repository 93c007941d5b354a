//go:build linux

package dispatch

import (
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"gfx.cafe/gfx/taffy/lib/util/dur"
)

func TestSticky_ThreadAffinity(t *testing.T) {
	d := NewSticky(Config{Size: 4, AcquireTimeout: dur.Duration(30 * time.Second)})
	defer func() {
		_ = d.Close()
	}()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Run(context.Background(), func(ctx context.Context) error {
				outer := syscall.Gettid()
				return d.Run(ctx, func(ctx context.Context) error {
					if inner := syscall.Gettid(); inner != outer {
						t.Error("expected the nested block on the outer thread, got", inner, "and", outer)
					}
					return nil
				})
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

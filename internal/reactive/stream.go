package reactive

import "context"

type generational[V any] struct {
	gen uint64
	val V
}

// SwitchMap calls fetch for every key received and emits its result, unless a
// newer key arrived in the meantime. Each fetch gets a context that is
// cancelled as soon as it is superseded; results tagged with an older
// generation are dropped even if they complete later.
func SwitchMap[K, V any](ctx context.Context, keys <-chan K, fetch func(context.Context, K) V) <-chan V {
	out := make(chan V, 1)
	go func() {
		defer close(out)

		var (
			gen      uint64
			inflight int
			cancel   context.CancelFunc = func() {}
			results                     = make(chan generational[V])
		)
		defer func() { cancel() }()

		for keys != nil || inflight > 0 {
			select {
			case <-ctx.Done():
				return
			case k, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				cancel()
				gen++
				var fetchCtx context.Context
				fetchCtx, cancel = context.WithCancel(ctx)
				inflight++
				go func(g uint64, k K) {
					v := fetch(fetchCtx, k)
					select {
					case results <- generational[V]{gen: g, val: v}:
					case <-ctx.Done():
					}
				}(gen, k)
			case r := <-results:
				inflight--
				if r.gen != gen {
					continue
				}
				Offer(out, r.val)
			}
		}
	}()
	return out
}

// Switch projects every key onto an inner stream and forwards values from the
// most recent inner stream only. The previous inner stream's context is
// cancelled when a new key arrives.
func Switch[K, V any](ctx context.Context, keys <-chan K, project func(context.Context, K) <-chan V) <-chan V {
	out := make(chan V, 1)
	go func() {
		defer close(out)

		var (
			inner  <-chan V
			cancel context.CancelFunc = func() {}
		)
		defer func() { cancel() }()

		for keys != nil || inner != nil {
			select {
			case <-ctx.Done():
				return
			case k, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				cancel()
				var innerCtx context.Context
				innerCtx, cancel = context.WithCancel(ctx)
				inner = project(innerCtx, k)
			case v, ok := <-inner:
				if !ok {
					inner = nil
					continue
				}
				Offer(out, v)
			}
		}
	}()
	return out
}

// CombineLatest emits combine(a, b) whenever either input changes, once both
// have produced a value.
func CombineLatest[A, B, C any](ctx context.Context, as <-chan A, bs <-chan B, combine func(A, B) C) <-chan C {
	out := make(chan C, 1)
	go func() {
		defer close(out)

		var (
			a            A
			b            B
			haveA, haveB bool
		)
		for as != nil || bs != nil {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-as:
				if !ok {
					as = nil
					continue
				}
				a, haveA = v, true
			case v, ok := <-bs:
				if !ok {
					bs = nil
					continue
				}
				b, haveB = v, true
			}
			if haveA && haveB {
				Offer(out, combine(a, b))
			}
		}
	}()
	return out
}

// Map transforms every value of in.
func Map[A, B any](ctx context.Context, in <-chan A, fn func(A) B) <-chan B {
	out := make(chan B, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				Offer(out, fn(v))
			}
		}
	}()
	return out
}

// Just returns a closed channel holding v.
func Just[V any](v V) <-chan V {
	ch := make(chan V, 1)
	ch <- v
	close(ch)
	return ch
}

// Package reactive turns plain maps and slices into observable state and re-runs
// effects that read that state when it changes.
//
//	rt := reactive.New()
//	s := reactive.NewObject(rt, map[string]any{"count": 0})
//	reactive.Effect(rt, func() error {
//		fmt.Println("count is", s.Get("count"))
//		return nil
//	})
//	s.Set("count", 1) // prints "count is 1"
//
// Reading a property while an effect runs subscribes the effect to that property.
// Writing a property runs every subscribed effect, or queues it while the runtime
// is paused (see Runtime.Batch, Runtime.Pause and Runtime.Resume). Each run
// starts from scratch, so dependencies follow whatever branch the effect took.
//
// Escape hatches: Untrack suppresses subscription for reads, ToRaw exposes the
// raw target so it can be mutated without any bookkeeping, and Notify triggers
// subscribers without a write.
//
// Everything runs synchronously on the caller's goroutine. Work an effect hands
// to another goroutine is outside the effect: its reads subscribe nothing, and
// since a Runtime is not safe for concurrent use, it must not touch the runtime
// at all. Start a new effect from the owning goroutine instead.
package reactive

// Package dots implements the falling-dot physics and gesture engine.
//
// The package owns everything with algorithmic content in the application:
//
//   - [Registry]: the live set of bodies, in insertion order
//   - [Integrate]: one integration step with gravity, wall and floor
//     clamping, and pairwise collision response
//   - [Scheduler]: drives the step once per display frame with a clamped dt
//   - [DragController]: long-press, drag and drop state machine
//   - [RenderSync]: copies body positions onto their visual elements
//   - [Engine]: the simulation context that owns all of the above
//
// Rendering and timing are supplied by the caller through [Surface] and
// [Host]. [Runloop] is a pumped [Host] suitable for game loops, terminal
// programs and tests.
//
// # Example
//
//	loop := dots.NewRunloop()
//	eng := dots.New(dots.DefaultTuning(), loop, surface)
//	eng.Create("hello", "id-1")
//	loop.Pump(16 * time.Millisecond)
//
// # Thread Safety
//
// Engine, Runloop and everything they own run on a single execution context.
// Pointer events and frame callbacks may arrive in any order; the drag
// controller keeps the held body out of the integrator so that ordering
// does not matter. None of the types are safe for concurrent use.
package dots

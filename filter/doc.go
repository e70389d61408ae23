// Package filter provides biquad filter stages and a fourth-order
// Linkwitz-Riley crossover for sample buffers.
//
// A [Stage] is a single second-order IIR section processed in Direct Form I.
// Its history persists across calls, so a stage must stay with one channel.
//
// A [Crossover] cascades two identical Butterworth stages (Q = 1/√2) into a
// low-pass or high-pass LR4 response. Coefficients are designed from the
// construction-time sample rate and the cutoff passed to every call, so the
// cutoff may change between buffers without losing history. The low-pass and
// high-pass outputs of the same cutoff sum to an allpass response:
//
//	lp, _ := filter.NewLowPass(48000)
//	hp, _ := filter.NewHighPass(48000)
//
//	lo, _ := filter.Apply(lp, buf, 1000)
//	hi, _ := filter.Apply(hp, buf, 1000)
//
// Cutoffs at or above the Nyquist frequency are not rejected and produce
// meaningless coefficients.
package filter

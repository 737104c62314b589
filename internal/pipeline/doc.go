// Package pipeline implements the synchronous enhancement passes.
//
// Each pass is a self-contained transformation over the parsed article page:
//   - Reading time estimate written into a placeholder
//   - Self-anchors on identified headings
//   - Labeled, highlighted code containers
//   - Figure identifiers and caption placeholders
//   - Figure/caption structure for cited blockquotes
//   - MathJax display unwrapping
//   - Theme stylesheet injection
//
// Passes never depend on each other's output and are safe to run more than
// once on the same document. The asynchronous behaviors of a page (audio
// exclusivity, deferred images, the clock) live in their own packages and
// are started by the root enhance package after the pipeline has run.
package pipeline

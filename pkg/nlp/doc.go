// Package nlp provides generation clients used to paraphrase retrieved
// fund facts into a final answer.
//
// The generation capability is best-effort by contract: it is resolved
// once at startup (Configured or Unavailable), every call carries a
// bounded timeout, and any failure makes the caller fall back to
// fact-based answers. No retries are performed on the answer path; a
// single failure triggers fallback to bound worst-case latency. An
// optional circuit breaker stops a flapping provider from adding its
// timeout to every request.
package nlp

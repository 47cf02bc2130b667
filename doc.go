// Package wordsmith derives password-cracking wordlists from a base list.
//
// Every input line is pushed through an optional chain of transforms and
// every result is written to the output, one word per line:
//
//   - Sanitize: drop parenthesised notes and punctuation, lower-case
//   - Case: every upper/lower permutation of the cased letters
//   - Leet: every combination of the classic leet substitutions
//   - Length mode: augment with a charset until a target length range
//   - Count mode: add exactly N charset characters in given positions
//
// Expansion is lazy. Generators produce one word at a time, so the memory a
// run needs depends on the worker count and buffer sizes rather than on how
// many words a line expands into.
//
// # Architecture
//
// The input file is memory-mapped and split into line-aligned chunks. A
// bounded pool of workers expands the chunks into pooled byte buffers and
// hands full buffers to a single writer over a bounded channel. When the
// writer falls behind the channel fills and workers block, which bounds the
// bytes in flight. An optional watchdog samples resident memory and either
// exits or cancels the run at a configured ceiling.
//
//	mmap chunks ──▶ workers (sanitize ▶ case ▶ leet ▶ length|count)
//	                   │ []byte buffers, bounded channel
//	                   ▼
//	                writer ──▶ file | stdout (optionally compressed)
//
// # Quick Start
//
//	wordsmith -f rockyou.txt -c -l -o out.txt
//	wordsmith length -f base.txt -m 8 -M 10 -a -C '0123456789'
//	wordsmith count -f base.txt -a 2 -C '!@#$' --compression zstd -o out.zst
//
// # Configuration
//
// Settings resolve from flags, then WORDSMITH_ environment variables, then
// a YAML file given with --config, then defaults. Environment variables are
// substituted into the file with ${VAR_NAME} syntax.
//
// # Packages
//
//   - internal/pipeline: orchestrator, workers, writer, watchdog, run loop
//   - pkg/generate: lazy case, leet, length and count generators
//   - pkg/sanitize: the three sanitize candidates
//   - pkg/mmap: read-only mapped input and line-aligned chunking
//   - pkg/compression: streaming output compression and the output sink
//   - pkg/config: viper backed configuration
//   - pkg/metrics, pkg/observability: Prometheus endpoint and tracing
package wordsmith

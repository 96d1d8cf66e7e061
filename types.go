package main

// DigestRequest describes one digest to ask the generator for.
type DigestRequest struct {
	Source    string   // directory to digest
	Excludes  []string // exclusion patterns forwarded to the generator
	LocalOnly bool     // restrict the digest to files directly inside Source
}

// Digest is the generator's answer: the flattened text and its size in lines.
type Digest struct {
	Text  string
	Lines int
}

// IndexEntry records one emitted digest file. Entries accumulate in emission
// order (depth-first) and every relative directory appears at most once.
type IndexEntry struct {
	Dir    string `yaml:"dir"`              // slash-separated path relative to the repo root, "." for the root
	File   string `yaml:"file"`             // digest filename inside the digest directory
	Lines  int    `yaml:"lines"`            // line count of the emitted digest
	Depth  int    `yaml:"depth"`            // recursion depth at which the digest was emitted
	Split  bool   `yaml:"split"`            // true for a local-files digest of a directory that was split
	Tokens int    `yaml:"tokens,omitempty"` // approximate token count, 0 when counting is disabled
}

// Summary holds aggregated information about a finished run.
type Summary struct {
	Digests     int
	TotalLines  int
	TotalTokens int
}

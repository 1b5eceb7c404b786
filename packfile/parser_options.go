package packfile

import "github.com/haxorof/gitpack/plumbing/hash"

// ParserOption configures a Parser at construction time, following
// go-git's functional-options idiom (plumbing/format/packfile's
// ParserOption).
type ParserOption func(*Parser)

// WithAlgorithm selects the hash algorithm used for the canonical
// object hash and the running packfile digest. Defaults to SHA-1.
func WithAlgorithm(algo hash.Algorithm) ParserOption {
	return func(p *Parser) {
		p.algo = algo
	}
}

// WithCallbacks installs the push-consumer callbacks the parser
// drives as it advances (spec.md §6.4).
func WithCallbacks(cb *Callbacks) ParserOption {
	return func(p *Parser) {
		p.callbacks = cb
	}
}

package tokenizer

// Encoding is a fixed-length token encoding of one sentence view.
//
// InputIDs and AttentionMask always have identical length (the max sequence
// length the encoding was built with). InputIDs is right-padded with the
// tokenizer's pad id; AttentionMask is 1 for real tokens and 0 for padding.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
}

// RealTokens returns the number of positions covered by the attention mask.
func (e Encoding) RealTokens() int {
	n := 0
	for _, m := range e.AttentionMask {
		if m == 1 {
			n++
		}
	}
	return n
}

// Tokenizer converts raw text to sub-word ids. It is the boundary to the
// external tokenization capability; implementations wrap whatever vocabulary
// the encoder was trained with.
//
// Tokenize returns plain sub-word ids without special tokens; BuildEncoding
// is responsible for adding BOS/EOS and applying the fixed-length contract.
type Tokenizer interface {
	Tokenize(text string) []int64
	PadID() int64
	BOSID() int64
	EOSID() int64
}

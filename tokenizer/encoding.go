package tokenizer

// BuildEncoding wraps sub-word ids with BOS/EOS, truncates the ids so the
// final sequence never exceeds maxLen, and right-pads with the pad id.
//
// The invariant len(InputIDs) == len(AttentionMask) == maxLen holds for every
// returned encoding regardless of the input length.
func BuildEncoding(tok Tokenizer, ids []int64, maxLen int) Encoding {
	// Reserve two positions for BOS and EOS.
	if len(ids) > maxLen-2 {
		ids = ids[:maxLen-2]
	}

	inputIDs := make([]int64, 0, maxLen)
	inputIDs = append(inputIDs, tok.BOSID())
	inputIDs = append(inputIDs, ids...)
	inputIDs = append(inputIDs, tok.EOSID())

	mask := make([]int64, 0, maxLen)
	for range inputIDs {
		mask = append(mask, 1)
	}

	for len(inputIDs) < maxLen {
		inputIDs = append(inputIDs, tok.PadID())
		mask = append(mask, 0)
	}

	return Encoding{InputIDs: inputIDs, AttentionMask: mask}
}

// Encode tokenizes raw text and builds its fixed-length encoding.
func Encode(tok Tokenizer, text string, maxLen int) Encoding {
	return BuildEncoding(tok, tok.Tokenize(text), maxLen)
}

package invindex

// posting weights: a character n-gram/prefix match contributes 1, a
// whole-word stemmed match contributes 10. Multiple postings for the same
// (iid, token) pair are legal and additive during scoring — a token
// appearing several times in one document's indexed text should score
// higher than a single occurrence.
const (
	weightGram = 1
	weightWord = 10
)

// posting is a single (internal document id, weight) pair inside a token's
// posting list.
type posting struct {
	iid    uint32
	weight uint8
}

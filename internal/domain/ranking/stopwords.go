package ranking

// stopwords are dropped from every corpus document. They are compared with
// already stemmed terms, so a stopword whose stem differs (e.g. "was" -> "wa")
// survives.
var stopwords = func() map[string]struct{} {
	words := []string{
		"about", "above", "after", "again", "all", "also", "am", "an", "and", "another",
		"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
		"between", "both", "but", "by", "came", "can", "cannot", "come", "could", "did",
		"do", "does", "doing", "during", "each", "few", "for", "from", "further", "get",
		"got", "has", "had", "he", "have", "her", "here", "him", "himself", "his", "how",
		"if", "in", "into", "is", "it", "its", "itself", "like", "make", "many", "me",
		"might", "more", "most", "much", "must", "my", "myself", "never", "now", "of", "on",
		"only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
		"said", "same", "see", "should", "since", "so", "some", "still", "such", "take", "than",
		"that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they",
		"this", "those", "through", "to", "too", "under", "until", "up", "very", "was",
		"way", "we", "well", "were", "what", "where", "when", "which", "while", "who",
		"whom", "with", "would", "why", "you", "your", "yours", "yourself",
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r",
		"s", "t", "u", "v", "w", "x", "y", "z", "$", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"0", "_",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

func isStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}

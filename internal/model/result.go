package model

// FetchResult is the outcome of one EDHREC deck-count fetch. Exactly one of
// three states holds: a definite count (Decks non-nil), unknown (Decks nil,
// Err empty — the page loaded but carried no count), or error (Err non-empty).
type FetchResult struct {
	Name      string `json:"name"`
	EDHRECURL string `json:"edhrec_url"`
	Decks     *int   `json:"decks,omitempty"`
	Err       string `json:"error,omitempty"`
}

// HasDecks reports whether the fetch produced a definite count.
func (r FetchResult) HasDecks() bool {
	return r.Decks != nil
}

// Failed reports whether the fetch hit a transport error.
func (r FetchResult) Failed() bool {
	return r.Err != ""
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const stateDelimiter = "_"

// LinkState is the decoded OAuth state parameter. The bot encodes the
// originating Telegram chat id and a random nonce as "<chatID>_<nonce>" when
// it builds the authorization URL, and the callback recovers the chat id from
// it. The nonce is opaque here; it only has to survive the round trip.
type LinkState struct {
	ChatID int64
	Nonce  string
}

// DecodeLinkState parses a raw state value. The chat id segment must be
// non-empty and numeric; everything after the first delimiter is the nonce.
func DecodeLinkState(raw string) (LinkState, error) {
	id, nonce, found := strings.Cut(raw, stateDelimiter)
	if !found {
		return LinkState{}, fmt.Errorf("%w: no delimiter in %q", ErrInvalidState, raw)
	}

	chatID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return LinkState{}, fmt.Errorf("%w: non-numeric chat id in %q", ErrInvalidState, raw)
	}

	return LinkState{ChatID: chatID, Nonce: nonce}, nil
}

// Encode renders the state in the wire format expected by DecodeLinkState.
func (s LinkState) Encode() string {
	return strconv.FormatInt(s.ChatID, 10) + stateDelimiter + s.Nonce
}

package responder

import (
	"encoding/json"
	"fmt"
)

// Verdict is the outcome of handling one inbound frame.
type Verdict int

const (
	VerdictReplyARP Verdict = iota + 1
	VerdictReplyICMP
	VerdictDropMalformed
	VerdictDropUnsupported
	VerdictDropPolicy

	numVerdicts
)

// Verdicts in the order they are reported.
var AllVerdicts = []Verdict{
	VerdictReplyARP,
	VerdictReplyICMP,
	VerdictDropMalformed,
	VerdictDropUnsupported,
	VerdictDropPolicy,
}

var verdictToStr = map[Verdict]string{
	VerdictReplyARP:        "reply-arp",
	VerdictReplyICMP:       "reply-icmp",
	VerdictDropMalformed:   "drop-malformed",
	VerdictDropUnsupported: "drop-unsupported",
	VerdictDropPolicy:      "drop-policy",
}

func (v Verdict) String() string {
	if s, ok := verdictToStr[v]; ok {
		return s
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// IsReply reports whether a reply frame comes with the verdict.
func (v Verdict) IsReply() bool {
	return v == VerdictReplyARP || v == VerdictReplyICMP
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	s, ok := verdictToStr[v]
	if !ok {
		return nil, fmt.Errorf("invalid verdict: %d", v)
	}
	return json.Marshal(s)
}

package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
)

const (
	KindOffer  = "offer"
	KindAnswer = "answer"
	KindICE    = "ice"
)

var (
	ErrUnknownKind  = errors.New("unknown signal kind")
	ErrEmptySDP     = errors.New("empty sdp")
	ErrNoMedia      = errors.New("sdp has no media sections")
	ErrNoCandidate  = errors.New("missing ice candidate")
	ErrBadCandidate = errors.New("malformed ice candidate")
)

// Signal is the relayed payload. The coordinator only inspects it; peers
// receive the original bytes.
type Signal struct {
	Kind      string                   `json:"kind"`
	SDP       string                   `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// Validator checks signal shape per sub-kind.
type Validator struct{}

func (Validator) Validate(raw json.RawMessage) (string, error) {
	var s Signal
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("decode signal: %w", err)
	}
	switch s.Kind {
	case KindOffer, KindAnswer:
		if strings.TrimSpace(s.SDP) == "" {
			return "", ErrEmptySDP
		}
		desc := webrtc.SessionDescription{Type: webrtc.NewSDPType(s.Kind), SDP: s.SDP}
		parsed, err := desc.Unmarshal()
		if err != nil {
			return "", fmt.Errorf("parse sdp: %w", err)
		}
		if !hasMedia(parsed) {
			return "", ErrNoMedia
		}
	case KindICE:
		if s.Candidate == nil {
			return "", ErrNoCandidate
		}
		// An empty candidate string marks end-of-candidates.
		if c := s.Candidate.Candidate; c != "" && !strings.HasPrefix(c, "candidate:") {
			return "", ErrBadCandidate
		}
	default:
		return "", ErrUnknownKind
	}
	return s.Kind, nil
}

func hasMedia(d *sdp.SessionDescription) bool {
	return d != nil && len(d.MediaDescriptions) > 0
}

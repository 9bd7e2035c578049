package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/syncdraft/internal/common"
)

// AIMode selects what the AI assist produces.
type AIMode string

const (
	AIModeNone    AIMode = ""
	AIModeSummary AIMode = "summary"
	AIModeGrammar AIMode = "grammar"
)

func ParseAIMode(s string) (AIMode, error) {
	switch m := AIMode(strings.ToLower(strings.TrimSpace(s))); m {
	case AIModeSummary, AIModeGrammar:
		return m, nil
	default:
		return AIModeNone, fmt.Errorf("%w: %q", common.ErrInvalidAIMode, s)
	}
}

// AISession identifies one opening of the AI panel. Zero means no session.
type AISession uint64

// AIPanelState is the state of the AI assist panel.
type AIPanelState struct {
	IsOpen bool
	Mode   AIMode

	// Result grows while a session streams and is reset when a session opens.
	Result string

	IsStreaming bool
	Session     AISession
}

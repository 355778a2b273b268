package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/Iron-Ham/council/internal/util"
)

// Offline is a deterministic Backend that needs no network. It lets the
// orchestrator run end to end without credentials and gives the same reply
// to the same request.
type Offline struct{}

// NewOffline creates an Offline backend.
func NewOffline() *Offline { return &Offline{} }

// Name implements Backend.
func (Offline) Name() string { return BackendOffline }

var offlineAngles = []string{
	"start with a two-week pilot and measure one KPI against a baseline",
	"reuse existing tools first and keep the cost of the first iteration low",
	"list the riskiest assumption and design the smallest experiment to test it",
}

// Complete implements Backend.
func (Offline) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	persona := personaOf(req.System)
	subject := util.CutRunes(firstLine(req.Prompt), 60)

	h := fnv.New32a()
	_, _ = h.Write([]byte(req.System))
	_, _ = h.Write([]byte(req.Prompt))
	angle := offlineAngles[h.Sum32()%uint32(len(offlineAngles))]

	if strings.Contains(req.Prompt, "keep this headline unchanged") {
		return fmt.Sprintf("%s follow-up on %q: %s.", persona, subject, angle), nil
	}
	return fmt.Sprintf("- %s view: %s\n- Focus: %s\n- Next: agree on an owner and a date", persona, subject, angle), nil
}

func personaOf(system string) string {
	s := strings.TrimPrefix(strings.TrimSpace(system), "You are ")
	s, _, _ = strings.Cut(s, ".")
	s = strings.TrimPrefix(s, "a ")
	s = strings.TrimPrefix(s, "an ")
	if s == "" {
		return "Advisor"
	}
	return util.CutRunes(s, 40)
}

func firstLine(s string) string {
	lines := util.NonEmptyLines(s)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

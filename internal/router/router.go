// Package router estimates how demanding a brief is and binds each role to
// the cloud or local backend accordingly.
package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/logging"
)

// Score thresholds.
const (
	HighThreshold   = 4
	MediumThreshold = 2

	// longBriefWords is the word count above which a brief scores a point.
	longBriefWords = 40
)

//nolint:gochecknoglobals // Static keyword tables
var (
	complexMarkers = []string{
		"complex", "multi-tenant", "multitenant", "oauth", "sso", "authentication", "jwt",
		"postgres", "mysql", "mongodb", "redis", "database migration",
		"websocket", "real-time", "realtime", "streaming",
		"payment", "stripe", "billing",
		"docker", "kubernetes", "k8s", "microservice", "distributed", "queue", "celery",
		"machine learning", "scalable", "production",
	}
	simpleMarkers = []string{
		"simple", "basic", "minimal", "small", "hello", "tiny", "quick",
		"calculator", "todo", "demo", "example", "prototype",
	}

	complexPatterns = compile(complexMarkers)
	simplePatterns  = compile(simpleMarkers)
)

func compile(markers []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(markers))
	for i, m := range markers {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(m))
	}
	return out
}

// Score returns the complexity score of brief and the markers that matched.
// Matches are word-prefix based, so "oauth" also catches "oauth2".
func Score(brief string) (int, []string) {
	text := strings.ToLower(brief)
	score := 0
	var signals []string
	for i, re := range complexPatterns {
		if re.MatchString(text) {
			score++
			signals = append(signals, "+"+complexMarkers[i])
		}
	}
	for i, re := range simplePatterns {
		if re.MatchString(text) {
			score--
			signals = append(signals, "-"+simpleMarkers[i])
		}
	}
	if n := len(strings.Fields(text)); n > longBriefWords {
		score++
		signals = append(signals, fmt.Sprintf("+long brief (%d words)", n))
	}
	return score, signals
}

// Classify maps a score to a complexity level.
func Classify(score int) domain.Complexity {
	switch {
	case score >= HighThreshold:
		return domain.ComplexityHigh
	case score >= MediumThreshold:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}

// Assign binds roles to backends. The planner is always on the cloud.
func Assign(c domain.Complexity, localAvailable bool) map[domain.Role]domain.BackendKind {
	out := map[domain.Role]domain.BackendKind{
		domain.RoleSupervisor: domain.BackendCloud,
		domain.RoleDeveloper:  domain.BackendCloud,
		domain.RoleTester:     domain.BackendCloud,
	}
	if !localAvailable {
		return out
	}
	switch c {
	case domain.ComplexityLow:
		out[domain.RoleDeveloper] = domain.BackendLocal
		out[domain.RoleTester] = domain.BackendLocal
	case domain.ComplexityMedium:
		out[domain.RoleTester] = domain.BackendLocal
	case domain.ComplexityHigh:
	}
	return out
}

// Router decides backend assignments per brief.
type Router struct {
	enabled bool
	logger  zerolog.Logger
}

// New creates a router.
func New(cfg config.RoutingConfig, logger zerolog.Logger) *Router {
	return &Router{enabled: cfg.Enabled, logger: logging.WithCategory(logger, logging.CategoryRouter)}
}

// Decide scores brief and assigns backends. When routing is disabled the
// default assignment is kept; when the local model is unavailable every
// role goes to the cloud.
func (r *Router) Decide(brief string, localAvailable bool) domain.RoutingDecision {
	score, signals := Score(brief)
	d := domain.RoutingDecision{
		Complexity:     Classify(score),
		Score:          score,
		LocalAvailable: localAvailable,
		Signals:        signals,
	}

	switch {
	case !r.enabled && localAvailable:
		d.Assignments = domain.DefaultAssignments()
		d.Reason = "routing disabled: planner on cloud, developer and tester on local"
	case !r.enabled:
		d.Assignments = Assign(d.Complexity, false)
		d.Reason = "routing disabled; local model unavailable, all agents use the cloud model"
	default:
		d.Assignments = Assign(d.Complexity, localAvailable)
		d.Reason = reason(d.Complexity, localAvailable)
	}

	r.logger.Info().
		Str("complexity", string(d.Complexity)).
		Int("score", score).
		Strs("signals", signals).
		Msgf("routing: %s", d.Reason)
	return d
}

func reason(c domain.Complexity, localAvailable bool) string {
	if !localAvailable {
		return fmt.Sprintf("%s complexity; local model unavailable, all agents use the cloud model", c)
	}
	switch c {
	case domain.ComplexityHigh:
		return "high complexity: all agents use the cloud model"
	case domain.ComplexityMedium:
		return "medium complexity: planner and developer on cloud, tester on local"
	default:
		return "low complexity: planner on cloud, developer and tester on local"
	}
}

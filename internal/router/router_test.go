package router

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		brief string
		want  domain.Complexity
	}{
		{"simple app", "Create a simple FastAPI app with a map", domain.ComplexityLow},
		{"calculator", "Create a simple calculator with add and subtract", domain.ComplexityLow},
		{"neutral", "A weather dashboard", domain.ComplexityLow},
		{"medium", "REST API with JWT authentication", domain.ComplexityMedium},
		{
			"complex",
			"Create a complex multi-tenant OAuth2 system with PostgreSQL, real-time websockets, Stripe payments, Docker, and comprehensive test coverage",
			domain.ComplexityHigh,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, _ := Score(tc.brief)
			assert.Equal(t, tc.want, Classify(score), "score %d", score)
		})
	}
}

func TestScore_Signals(t *testing.T) {
	score, signals := Score("Simple OAuth2 login")
	assert.Equal(t, 0, score)
	assert.Contains(t, signals, "+oauth")
	assert.Contains(t, signals, "-simple")
}

func TestScore_LongBrief(t *testing.T) {
	brief := strings.Repeat("word ", longBriefWords+1)
	score, signals := Score(brief)
	assert.Equal(t, 1, score)
	assert.Len(t, signals, 1)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.ComplexityLow, Classify(-3))
	assert.Equal(t, domain.ComplexityLow, Classify(1))
	assert.Equal(t, domain.ComplexityMedium, Classify(2))
	assert.Equal(t, domain.ComplexityMedium, Classify(3))
	assert.Equal(t, domain.ComplexityHigh, Classify(4))
}

func TestAssign(t *testing.T) {
	low := Assign(domain.ComplexityLow, true)
	assert.Equal(t, domain.BackendCloud, low[domain.RoleSupervisor])
	assert.Equal(t, domain.BackendLocal, low[domain.RoleDeveloper])
	assert.Equal(t, domain.BackendLocal, low[domain.RoleTester])

	medium := Assign(domain.ComplexityMedium, true)
	assert.Equal(t, domain.BackendCloud, medium[domain.RoleDeveloper])
	assert.Equal(t, domain.BackendLocal, medium[domain.RoleTester])

	high := Assign(domain.ComplexityHigh, true)
	for _, role := range domain.Roles() {
		assert.Equal(t, domain.BackendCloud, high[role])
	}

	noLocal := Assign(domain.ComplexityLow, false)
	for _, role := range domain.Roles() {
		assert.Equal(t, domain.BackendCloud, noLocal[role])
	}
}

func TestDecide(t *testing.T) {
	var logs bytes.Buffer
	r := New(config.RoutingConfig{Enabled: true}, zerolog.New(&logs))

	d := r.Decide("Create a simple calculator", true)
	assert.Equal(t, domain.ComplexityLow, d.Complexity)
	assert.True(t, d.LocalAvailable)
	assert.Equal(t, domain.BackendLocal, d.BackendFor(domain.RoleDeveloper))
	assert.Contains(t, d.Reason, "low complexity")
	assert.Contains(t, logs.String(), `"category":"router"`)

	d = r.Decide("Create a simple calculator", false)
	assert.Equal(t, domain.BackendCloud, d.BackendFor(domain.RoleDeveloper))
	assert.Contains(t, d.Reason, "local model unavailable")
}

func TestDecide_Disabled(t *testing.T) {
	r := New(config.RoutingConfig{Enabled: false}, zerolog.Nop())

	d := r.Decide("complex multi-tenant oauth postgres docker system", true)
	assert.Equal(t, domain.ComplexityHigh, d.Complexity)
	assert.Equal(t, domain.DefaultAssignments(), d.Assignments)
	assert.Contains(t, d.Reason, "routing disabled")

	d = r.Decide("anything", false)
	assert.Equal(t, domain.BackendCloud, d.BackendFor(domain.RoleTester))
}

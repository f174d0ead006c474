package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/sherifabdallah/easyapply/internal/profile"
)

type stubAdvisor struct {
	response string
	err      error
}

func (s *stubAdvisor) Ask(context.Context, string, string) (string, error) {
	return s.response, s.err
}

func testGate(t *testing.T, adv *stubAdvisor) *Gate {
	t.Helper()
	p := profile.Parse("name: A B\nskills: Python, SQL\n")
	if adv == nil {
		return New(nil, p, zaptest.NewLogger(t))
	}
	return New(adv, p, zaptest.NewLogger(t))
}

func TestDecideAdvisoryVerdict(t *testing.T) {
	t.Run("affirmative", func(t *testing.T) {
		g := testGate(t, &stubAdvisor{response: "YES - strong backend match"})
		apply, reason := g.Decide(context.Background(), "Backend role")
		assert.True(t, apply)
		assert.Equal(t, "YES - strong backend match", reason)
	})

	t.Run("negative", func(t *testing.T) {
		g := testGate(t, &stubAdvisor{response: "NO - this is a sales position"})
		apply, _ := g.Decide(context.Background(), "Sales role")
		assert.False(t, apply)
	})

	t.Run("verdict read from leading tokens only", func(t *testing.T) {
		g := testGate(t, &stubAdvisor{response: "NO. The description says yes to travel but it is not engineering."})
		apply, _ := g.Decide(context.Background(), "Field technician")
		assert.False(t, apply, "a trailing 'yes' in the reason must not flip the verdict")
	})
}

func TestDecideKeywordFallback(t *testing.T) {
	t.Run("advisory unreachable with engineering keyword", func(t *testing.T) {
		g := testGate(t, &stubAdvisor{err: errors.New("connection refused")})
		apply, reason := g.Decide(context.Background(), "We are hiring a Backend Developer to scale our platform.")
		assert.True(t, apply)
		assert.Equal(t, "Keyword match", reason)
	})

	t.Run("advisory unreachable without keyword", func(t *testing.T) {
		g := testGate(t, &stubAdvisor{err: errors.New("connection refused")})
		apply, reason := g.Decide(context.Background(), "Regional sales manager for the MENA region.")
		assert.False(t, apply)
		assert.Equal(t, "No match", reason)
	})

	t.Run("no advisor configured", func(t *testing.T) {
		g := testGate(t, nil)
		apply, reason := g.Decide(context.Background(), "Full stack engineer wanted")
		assert.True(t, apply)
		assert.Equal(t, "Keyword match", reason)
	})
}

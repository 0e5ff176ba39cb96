package policy

import (
	"errors"
	"testing"

	"portwatch/pkg/netstat"
	"portwatch/pkg/redirect"
	"portwatch/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrompter struct {
	confirmAnswers []bool // consumed in order, default false
	confirms       []string
	notifyAnswer   bool
	notifies       []string
	errorsSeen     []string

	beforeConfirm func() // runs before each Confirm answer, may race the pool
}

func (f *fakePrompter) Confirm(question string) bool {
	f.confirms = append(f.confirms, question)
	if f.beforeConfirm != nil {
		f.beforeConfirm()
	}
	if len(f.confirmAnswers) == 0 {
		return false
	}
	answer := f.confirmAnswers[0]
	f.confirmAnswers = f.confirmAnswers[1:]
	return answer
}

func (f *fakePrompter) Notify(message, action string) bool {
	f.notifies = append(f.notifies, message)
	return f.notifyAnswer
}

func (f *fakePrompter) Error(message string) {
	f.errorsSeen = append(f.errorsSeen, message)
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) OpenExternal(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

type startedRedirect struct {
	entry      registry.WorkspacePort
	targetPort int
}

type fakeStarter struct {
	started []startedRedirect
	err     error
}

func (f *fakeStarter) Start(entry registry.WorkspacePort, targetPort int) (redirect.Active, error) {
	f.started = append(f.started, startedRedirect{entry: entry, targetPort: targetPort})
	if f.err != nil {
		return redirect.Active{}, f.err
	}
	localPort, _ := entry.Number()
	return redirect.Active{Entry: entry, LocalPort: localPort, TargetPort: targetPort}, nil
}

type fakeDecisions map[int]string

func (f fakeDecisions) Decision(port int) (string, bool) {
	d, ok := f[port]
	return d, ok
}

type historyEntry struct {
	localPort, targetPort int
	url                   string
}

type fakeHistory struct {
	records []historyEntry
}

func (f *fakeHistory) AddRedirect(localPort, targetPort int, url string) error {
	f.records = append(f.records, historyEntry{localPort, targetPort, url})
	return nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.WorkspacePort{
		{Port: "3000", Name: "web", URL: "https://web.example.test"},
		{Port: "9000", Name: "api", URL: "https://api.example.test"},
		{Port: "4401", Name: "redirect-1", URL: "https://r1.example.test"},
		{Port: "4402", Name: "redirect-2"},
	})
	require.NoError(t, err)
	return reg
}

type engineFixture struct {
	engine   *Engine
	pool     *redirect.Pool
	prompter *fakePrompter
	opener   *fakeOpener
	starter  *fakeStarter
	history  *fakeHistory
}

func newFixture(t *testing.T, decisions fakeDecisions) *engineFixture {
	t.Helper()
	reg := testRegistry(t)
	f := &engineFixture{
		pool:     redirect.NewPool(reg.RedirectTargets()),
		prompter: &fakePrompter{},
		opener:   &fakeOpener{},
		starter:  &fakeStarter{},
		history:  &fakeHistory{},
	}
	var ds DecisionStore
	if decisions != nil {
		ds = decisions
	}
	f.engine = NewEngine(reg, f.pool, f.starter, f.prompter, f.opener, ds, f.history)
	return f
}

func TestDeclaredPortNotifiesAndLeavesPoolUntouched(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.notifyAnswer = true

	f.engine.HandleOpened(netstat.Port{Number: 3000, Interface: "0.0.0.0"})

	require.Len(t, f.prompter.notifies, 1)
	assert.Contains(t, f.prompter.notifies[0], `"web"`)
	assert.Contains(t, f.prompter.notifies[0], "https://web.example.test")
	assert.Equal(t, []string{"https://web.example.test"}, f.opener.opened)
	assert.Empty(t, f.prompter.confirms)
	assert.Equal(t, 2, f.pool.Size(), "declared ports never consume the pool")
	assert.Empty(t, f.starter.started)
}

func TestDeclaredPortNotificationDismissedOpensNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.notifyAnswer = false

	f.engine.HandleOpened(netstat.Port{Number: 9000, Interface: "::"})

	assert.Len(t, f.prompter.notifies, 1)
	assert.Empty(t, f.opener.opened)
}

func TestUndeclaredPortConfirmConsumesOnePoolEntry(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.confirmAnswers = []bool{true, false} // create redirect, decline open

	f.engine.HandleOpened(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	require.Len(t, f.starter.started, 1)
	assert.Equal(t, "redirect-1", f.starter.started[0].entry.Name)
	assert.Equal(t, 5000, f.starter.started[0].targetPort)
	assert.Equal(t, 1, f.pool.Size())
	require.Len(t, f.history.records, 1)
	assert.Equal(t, historyEntry{4401, 5000, "https://r1.example.test"}, f.history.records[0])
	assert.Empty(t, f.opener.opened)
}

func TestUndeclaredPortDeclineLeavesPoolUntouched(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.confirmAnswers = []bool{false}

	f.engine.HandleOpened(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	assert.Len(t, f.prompter.confirms, 1)
	assert.Empty(t, f.starter.started)
	assert.Equal(t, 2, f.pool.Size())
	assert.Empty(t, f.prompter.errorsSeen)
}

func TestNonWildcardPortOffersRedirectNotLink(t *testing.T) {
	// Port 3000 is declared, but bound to loopback it is unreachable
	// from outside; the offer flow applies, not the open-link flow.
	f := newFixture(t, nil)
	f.prompter.confirmAnswers = []bool{true, true}

	f.engine.HandleOpened(netstat.Port{Number: 3000, Interface: "127.0.0.1"})

	assert.Empty(t, f.prompter.notifies)
	require.NotEmpty(t, f.prompter.confirms)
	assert.Contains(t, f.prompter.confirms[0], "127.0.0.1")
	require.Len(t, f.starter.started, 1)
	assert.Equal(t, 3000, f.starter.started[0].targetPort)
	// Redirect created and its URL accepted.
	assert.Equal(t, []string{"https://r1.example.test"}, f.opener.opened)
}

func TestExhaustedPoolShowsBlockingErrorOnly(t *testing.T) {
	f := newFixture(t, nil)
	f.pool = redirect.NewPool(nil)
	f.engine = NewEngine(testRegistry(t), f.pool, f.starter, f.prompter, f.opener, nil, f.history)

	f.engine.HandleOpened(netstat.Port{Number: 4000, Interface: "127.0.0.1"})

	require.Len(t, f.prompter.errorsSeen, 1)
	assert.Contains(t, f.prompter.errorsSeen[0], "4000")
	assert.Empty(t, f.prompter.confirms, "no offer when nothing can be allocated")
	assert.Empty(t, f.starter.started)
}

func TestReservedRedirectPortStaysQuiet(t *testing.T) {
	f := newFixture(t, nil)

	f.engine.HandleOpened(netstat.Port{Number: 4401, Interface: "0.0.0.0"})

	assert.Empty(t, f.prompter.confirms)
	assert.Empty(t, f.prompter.notifies)
	assert.Empty(t, f.prompter.errorsSeen)
	assert.Equal(t, 2, f.pool.Size())
}

func TestRememberedIgnoreSuppressesEverything(t *testing.T) {
	f := newFixture(t, fakeDecisions{5000: DecisionIgnore})

	f.engine.HandleOpened(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	assert.Empty(t, f.prompter.confirms)
	assert.Empty(t, f.prompter.notifies)
	assert.Empty(t, f.prompter.errorsSeen)
	assert.Equal(t, 2, f.pool.Size())
}

func TestPoolDrainedDuringPromptSurfacesError(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.confirmAnswers = []bool{true}
	f.prompter.beforeConfirm = func() {
		// A concurrent offer wins the race while the prompt is up.
		for {
			if _, ok := f.pool.TryPop(); !ok {
				return
			}
		}
	}

	f.engine.HandleOpened(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	require.Len(t, f.prompter.errorsSeen, 1)
	assert.Empty(t, f.starter.started)
}

func TestBindFailureConsumesEntryAndReportsError(t *testing.T) {
	f := newFixture(t, nil)
	f.prompter.confirmAnswers = []bool{true}
	f.starter.err = errors.New("address already in use")

	f.engine.HandleOpened(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	require.Len(t, f.prompter.errorsSeen, 1)
	assert.Contains(t, f.prompter.errorsSeen[0], "4401")
	assert.Equal(t, 1, f.pool.Size(), "a failed start never returns the entry")
	assert.Empty(t, f.history.records)
}

func TestClosedPortNeverPrompts(t *testing.T) {
	f := newFixture(t, nil)

	f.engine.HandleClosed(netstat.Port{Number: 5000, Interface: "0.0.0.0"})

	assert.Empty(t, f.prompter.confirms)
	assert.Empty(t, f.prompter.notifies)
	assert.Empty(t, f.prompter.errorsSeen)
	assert.Equal(t, 2, f.pool.Size())
}

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ppiankov/docketscan/internal/model"
)

var errUnreachable = errors.New("net::ERR_CONNECTION_RESET")

// fakeSession serves canned pages and records every call in order
type fakeSession struct {
	pages       map[string]string // page source by URL
	failures    map[string]int    // remaining navigation failures by URL
	waitErr     error
	afterSubmit string // source shown after clicking submit
	current     string
	calls       []string
	active      int32
	overlapped  atomic.Bool
	closed      bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		pages:    make(map[string]string),
		failures: make(map[string]int),
	}
}

func (s *fakeSession) enter() func() {
	if atomic.AddInt32(&s.active, 1) > 1 {
		s.overlapped.Store(true)
	}
	return func() { atomic.AddInt32(&s.active, -1) }
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	defer s.enter()()
	s.calls = append(s.calls, "navigate "+url)
	if s.failures[url] > 0 {
		s.failures[url]--
		return errUnreachable
	}
	s.current = s.pages[url]
	return nil
}

func (s *fakeSession) WaitReady(_ context.Context, selector string) error {
	defer s.enter()()
	s.calls = append(s.calls, "wait "+selector)
	return s.waitErr
}

func (s *fakeSession) Source(context.Context) (string, error) {
	defer s.enter()()
	s.calls = append(s.calls, "source")
	return s.current, nil
}

func (s *fakeSession) SendKeys(_ context.Context, _ string, text string) error {
	defer s.enter()()
	s.calls = append(s.calls, "keys "+text)
	return nil
}

func (s *fakeSession) Click(context.Context, string) error {
	defer s.enter()()
	s.calls = append(s.calls, "click")
	s.current = s.afterSubmit
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSession) navigations() []string {
	var out []string
	for _, c := range s.calls {
		if url, ok := strings.CutPrefix(c, "navigate "); ok {
			out = append(out, url)
		}
	}
	return out
}

// fakePacer records pacing into the session call log instead of waiting
type fakePacer struct {
	session   *fakeSession
	intervals map[string]time.Duration
}

func (p *fakePacer) Wait(context.Context, string) error {
	p.session.calls = append(p.session.calls, "pace")
	return nil
}

func (p *fakePacer) Interval(string) time.Duration {
	return 0
}

func (p *fakePacer) SetDomainInterval(domain string, interval time.Duration) {
	if p.intervals == nil {
		p.intervals = make(map[string]time.Duration)
	}
	p.intervals[domain] = interval
}

func (p *fakePacer) Restart(string) {
	p.session.calls = append(p.session.calls, "restart")
}

func recordingSleeper(s *fakeSession) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		s.calls = append(s.calls, "sleep "+d.String())
		return nil
	}
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.People.RateLimit = 0
	cfg.Enrich.RetryBackoff = time.Millisecond
	cfg.Cache.Enabled = false
	return cfg
}

const resultsPage = `<html><body>
<table id="ctl00_ContentPlaceHolder1_gvPropertyResults">
  <tr><th>Address</th><th>Town</th><th>Type</th><th>Name</th><th>Docket</th></tr>
  <tr><td>12 Main St</td><td>Middletown</td><td>FC</td><td>BANK ONE v. DOE, JANE</td><td><a href="#">MMX-CV-24-6010001-S</a></td></tr>
  <tr><td>4 Elm St</td><td>Middletown</td><td>FC</td><td>BANK TWO v. ROE, RICHARD</td><td><a href="#">MMX-CV-24-6010002-S</a></td></tr>
  <tr><td>9 Oak Ave</td><td>Middletown</td><td>FC</td><td>LENDER v. SMITH, JOHN</td><td>MMX-CV-24-6010003-S</td></tr>
  <tr><td>7 Pine Rd</td><td>Middletown</td><td>FC</td><td>CREDIT UNION v. POE, ANN</td><td><a href="#">MMX-CV-24-6010004-S</a></td></tr>
</table>
</body></html>`

func detailPage(defendant, address string) string {
	return `<html><body><table id="ctl00_tblContent"><tr><td>` +
		`<span id="ctl00_ContentPlaceHolder1_CaseDetailParties1_gvParties_ctl05_lblPtyPartyName">` + defendant + `</span>` +
		`<span id="ctl00_ContentPlaceHolder1_CaseDetailBasicInfo1_lblPropertyAddress">` + address + `</span>` +
		`</td></tr></table></body></html>`
}

func peoplePage(cards ...string) string {
	page := `<html><body>`
	for _, c := range cards {
		page += c
	}
	return page + `</body></html>`
}

func personCard(name, address string, phones ...string) string {
	card := `<div class="search-result"><div class="h4">` + name + `</div>` +
		`<div data-label="Current Address"><span itemprop="address">` + address + `</span></div>` +
		`<div data-label="Phone Numbers">`
	for _, p := range phones {
		card += `<a href="tel:` + p + `">` + p + `</a>`
	}
	return card + `</div></div>`
}

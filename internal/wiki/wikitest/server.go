// Package wikitest provides an in-memory MediaWiki action API for tests.
//
// The server understands the subset of api.php that the wiki package uses:
// login and CSRF tokens, section and full-page edits, moves, deletes
// and list=allpages with continuation. Titles are stored exactly
// as sent; no underscore or case folding is applied.
package wikitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	// LoginToken is the token handed out by meta=tokens&type=login.
	LoginToken = "0123456789abcdef0123456789abcdef+\\"
	// CSRFToken is the token handed out by meta=tokens&type=csrf.
	CSRFToken = "fedcba9876543210fedcba9876543210+\\"

	sessionCookie = "wikitest_session"
)

var headingLine = regexp.MustCompile(`^==\s*(.*?)\s*==\s*$`)

type section struct {
	heading string
	body    string
}

type page struct {
	lead     string
	sections []section
}

func (p *page) text() string {
	var b strings.Builder
	b.WriteString(p.lead)
	for _, s := range p.sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("== " + s.heading + " ==\n" + s.body)
	}
	return b.String()
}

func parsePage(text string) *page {
	p := &page{}
	var lead []string
	var cur *section
	var body []string
	flush := func() {
		if cur != nil {
			cur.body = strings.Join(body, "\n")
			p.sections = append(p.sections, *cur)
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			cur = &section{heading: m[1]}
			body = nil
			continue
		}
		if cur == nil {
			lead = append(lead, line)
		} else {
			body = append(body, line)
		}
	}
	flush()
	p.lead = strings.Join(lead, "\n")
	return p
}

// Server is a fake wiki. Its zero value is not usable; create one with New.
type Server struct {
	*httptest.Server

	// PageSize is how many titles list=allpages returns per batch.
	PageSize int

	mu       sync.Mutex
	user     string
	password string
	sessions map[string]bool
	nextID   int
	pages    map[string]*page
	ids      map[string]int
	failures map[string]string
	actions  []string
}

// New starts a fake wiki that accepts user and password.
func New(user, password string) *Server {
	s := &Server{
		PageSize: 500,
		user:     user,
		password: password,
		sessions: make(map[string]bool),
		pages:    make(map[string]*page),
		ids:      make(map[string]int),
		failures: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint returns the api.php URL of the fake wiki.
func (s *Server) Endpoint() string {
	return s.URL + "/api.php"
}

// Fail makes every later request for action on title answer with the API
// error code. For moves, title is the source page.
func (s *Server) Fail(action, title, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[action+"\x00"+title] = code
}

// SetPage creates or replaces a page with the given wikitext.
func (s *Server) SetPage(title, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(title, parsePage(text))
}

// Text returns the full wikitext of title.
func (s *Server) Text(title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[title]
	if !ok {
		return "", false
	}
	return p.text(), true
}

// Headings returns the section headings of title in order.
func (s *Server) Headings(title string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[title]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.sections))
	for _, sec := range p.sections {
		out = append(out, sec.heading)
	}
	return out
}

// Titles returns every page title, sorted.
func (s *Server) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTitles()
}

// Actions returns the write requests served so far, such as
// "edit Proposal_1#2" or "move Proposal_1 -> Proposal_1: Alpha".
func (s *Server) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.actions)
}

func (s *Server) sortedTitles() []string {
	titles := make([]string, 0, len(s.pages))
	for t := range s.pages {
		titles = append(titles, t)
	}
	slices.Sort(titles)
	return titles
}

func (s *Server) put(title string, p *page) {
	if _, ok := s.ids[title]; !ok {
		s.nextID++
		s.ids[title] = s.nextID
	}
	s.pages[title] = p
}

func (s *Server) remove(title string) {
	delete(s.pages, title)
	delete(s.ids, title)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api.php" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.session(w, r)

	var resp any
	switch r.Form.Get("action") {
	case "query":
		resp = s.query(r)
	case "login":
		resp = s.login(r, session)
	case "edit", "move", "delete":
		if errResp := s.checkWrite(r, session); errResp != nil {
			resp = errResp
			break
		}
		switch r.Form.Get("action") {
		case "edit":
			resp = s.edit(r)
		case "move":
			resp = s.move(r)
		default:
			resp = s.delete(r)
		}
	default:
		resp = apiError("badvalue", "Unrecognized value for parameter \"action\"")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, ok := s.sessions[c.Value]; ok {
			return c.Value
		}
	}
	id := strconv.Itoa(len(s.sessions) + 1)
	s.sessions[id] = false
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	return id
}

func apiError(code, info string) map[string]any {
	return map[string]any{"error": map[string]string{"code": code, "info": info}}
}

func (s *Server) query(r *http.Request) any {
	switch {
	case r.Form.Get("meta") == "tokens":
		kind := r.Form.Get("type")
		if kind == "" {
			kind = "csrf"
		}
		tokens := map[string]string{}
		switch kind {
		case "login":
			tokens["logintoken"] = LoginToken
		case "csrf":
			tokens["csrftoken"] = CSRFToken
		default:
			return apiError("badvalue", "Unrecognized value for parameter \"type\"")
		}
		return map[string]any{"query": map[string]any{"tokens": tokens}}

	case r.Form.Get("list") == "allpages":
		return s.allPages(r)
	}
	return apiError("badvalue", "unsupported query")
}

func (s *Server) allPages(r *http.Request) any {
	ns, _ := strconv.Atoi(r.Form.Get("apnamespace"))
	prefix := r.Form.Get("apprefix")
	from := r.Form.Get("apcontinue")

	var matched []string
	for _, title := range s.sortedTitles() {
		if namespaceOf(title) != ns {
			continue
		}
		if strings.HasPrefix(stripNamespace(title), prefix) && title >= from {
			matched = append(matched, title)
		}
	}

	out := map[string]any{}
	if len(matched) > s.PageSize {
		out["continue"] = map[string]string{"apcontinue": matched[s.PageSize], "continue": "-||"}
		matched = matched[:s.PageSize]
	}
	list := make([]map[string]any, 0, len(matched))
	for _, title := range matched {
		list = append(list, map[string]any{"pageid": s.ids[title], "ns": ns, "title": title})
	}
	out["query"] = map[string]any{"allpages": list}
	return out
}

func (s *Server) login(r *http.Request, session string) any {
	if r.Method != http.MethodPost {
		return apiError("mustbeposted", "The \"login\" module requires a POST request.")
	}
	if r.Form.Get("lgtoken") != LoginToken {
		return map[string]any{"login": map[string]string{"result": "WrongToken"}}
	}
	if r.Form.Get("lgname") != s.user || r.Form.Get("lgpassword") != s.password {
		return map[string]any{"login": map[string]string{
			"result": "Failed",
			"reason": "Incorrect username or password entered. Please try again.",
		}}
	}
	s.sessions[session] = true
	return map[string]any{"login": map[string]any{"result": "Success", "lguserid": 1, "lgusername": s.user}}
}

func (s *Server) checkWrite(r *http.Request, session string) any {
	if r.Method != http.MethodPost {
		return apiError("mustbeposted", "write modules require a POST request")
	}
	if r.Form.Get("assert") == "user" && !s.sessions[session] {
		return apiError("assertuserfailed", "You are no longer logged in.")
	}
	if r.Form.Get("token") != CSRFToken {
		return apiError("badtoken", "Invalid CSRF token.")
	}
	return nil
}

func (s *Server) failure(action, title string) any {
	if code, ok := s.failures[action+"\x00"+title]; ok {
		return apiError(code, "injected failure")
	}
	return nil
}

func (s *Server) edit(r *http.Request) any {
	title := r.Form.Get("title")
	text := r.Form.Get("text")
	sec := r.Form.Get("section")

	label := title
	if sec != "" {
		label += "#" + sec
	}
	s.actions = append(s.actions, "edit "+label)

	if errResp := s.failure("edit", title); errResp != nil {
		return errResp
	}

	p, exists := s.pages[title]
	switch {
	case sec == "":
		s.put(title, parsePage(text))
	case sec == "new":
		if !exists {
			p = &page{}
		}
		p.sections = append(p.sections, section{heading: r.Form.Get("sectiontitle"), body: text})
		s.put(title, p)
	case sec == "0":
		if !exists {
			p = &page{}
		}
		p.lead = text
		s.put(title, p)
	default:
		n, err := strconv.Atoi(sec)
		if err != nil || n < 0 {
			return apiError("invalidsection", "The section parameter must be a valid section ID or \"new\".")
		}
		if !exists || n > len(p.sections) {
			return apiError("nosuchsection", fmt.Sprintf("There is no section %d.", n))
		}
		replacement := parsePage(text)
		replaced := section{body: text}
		if len(replacement.sections) > 0 && replacement.lead == "" {
			replaced = replacement.sections[0]
		}
		p.sections[n-1] = replaced
	}

	return map[string]any{"edit": map[string]any{"result": "Success", "title": title}}
}

func (s *Server) move(r *http.Request) any {
	from, to := r.Form.Get("from"), r.Form.Get("to")
	s.actions = append(s.actions, "move "+from+" -> "+to)

	if errResp := s.failure("move", from); errResp != nil {
		return errResp
	}
	p, ok := s.pages[from]
	if !ok {
		return apiError("missingtitle", "The page you specified doesn't exist.")
	}
	if _, ok := s.pages[to]; ok {
		return apiError("articleexists", "A page of that name already exists, or the name you have chosen is not valid.")
	}

	s.put(to, p)
	s.pages[from] = &page{lead: "#REDIRECT [[" + to + "]]"}
	return map[string]any{"move": map[string]any{"from": from, "to": to}}
}

func (s *Server) delete(r *http.Request) any {
	title := r.Form.Get("title")
	s.actions = append(s.actions, "delete "+title)

	if errResp := s.failure("delete", title); errResp != nil {
		return errResp
	}
	if _, ok := s.pages[title]; !ok {
		return apiError("missingtitle", "The page you specified doesn't exist.")
	}
	s.remove(title)
	return map[string]any{"delete": map[string]any{"title": title}}
}

func namespaceOf(title string) int {
	if strings.HasPrefix(title, "Category:") {
		return 14
	}
	return 0
}

func stripNamespace(title string) string {
	return strings.TrimPrefix(title, "Category:")
}

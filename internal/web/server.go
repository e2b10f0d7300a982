// Package web serves the hosted goal-plan pages and the small JSON API the
// terminal editor talks to.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"goalplan/internal/export"
	"goalplan/internal/model"
	"goalplan/internal/store"
)

//go:embed templates/*.html
var assetsFS embed.FS

type Config struct {
	Addr string
	DB   *store.DB
}

type Server struct {
	cfg  Config
	db   *store.DB
	tmpl *template.Template
}

func NewServer(cfg Config) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.DB == nil {
		return nil, errors.New("web: nil store")
	}
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, db: cfg.DB, tmpl: tmpl}, nil
}

func (s *Server) ListenAndServe() error {
	log.Printf("goalplan web: listening on %s", s.cfg.Addr)
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /new/{module}", s.handleNew)
	mux.HandleFunc("GET /continue/{module}", s.handleContinueGet)
	mux.HandleFunc("POST /continue/{module}", s.handleContinuePost)
	mux.HandleFunc("GET /objectives/{code}", s.handleObjectivesGet)
	mux.HandleFunc("POST /objectives/{code}", s.handleObjectivesPost)
	mux.HandleFunc("GET /records/{code}", s.handleRecordsGet)
	mux.HandleFunc("POST /records/{code}", s.handleRecordsPost)
	mux.HandleFunc("GET /export/{code}", s.handleExport)
	mux.HandleFunc("POST /ack-code", s.handleAckCode)
	mux.HandleFunc("POST /api/workspaces", s.handleCreateWorkspace)
	mux.HandleFunc("GET /api/plan/{code}", s.handlePlanGet)
	mux.HandleFunc("POST /api/delete-workspace", s.handleDeleteWorkspace)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// ---- flash + session cookies ----
//
// Flash messages ride on a short-lived cookie and are cleared on first read,
// mirroring the hosted page's one-shot notices.

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: url.QueryEscape(msg), Path: "/"})
}

func takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

func setWorkspaceCookies(w http.ResponseWriter, code string, acked bool) {
	http.SetCookie(w, &http.Cookie{Name: "last_code", Value: code, Path: "/"})
	ack := "0"
	if acked {
		ack = "1"
	}
	http.SetCookie(w, &http.Cookie{Name: "code_ack", Value: ack, Path: "/"})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// ---- view models ----

type baseVM struct {
	Flash    string
	LastCode string
	CodeAck  bool
}

func (s *Server) baseVMForRequest(w http.ResponseWriter, r *http.Request) baseVM {
	return baseVM{
		Flash:    takeFlash(w, r),
		LastCode: cookieValue(r, "last_code"),
		CodeAck:  cookieValue(r, "code_ack") == "1",
	}
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	var sb strings.Builder
	if err := s.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, sb.String())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

func todayYMD() string { return time.Now().Format("2006-01-02") }

// ---- pages ----

type homeVM struct{ baseVM }

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeHTMLTemplate(w, "home.html", homeVM{baseVM: s.baseVMForRequest(w, r)})
}

func validModule(m string) bool { return m == "objectives" || m == "records" }

// handleNew creates a fresh workspace seeded with default objectives and one
// default goal group, then sends the user to the requested module.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")
	if !validModule(module) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctx := r.Context()
	ws, err := s.db.CreateWorkspace(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	obj := model.Objectives{
		TargetDate: todayYMD(),
		Category:   model.CategoryOrientation,
	}
	seed := []model.GoalGroup{{LongTerm: model.DefaultGoal(model.CategoryOrientation)}}
	if err := s.db.SaveObjectives(ctx, ws.ID, obj, seed); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	setWorkspaceCookies(w, ws.Code, false)
	setFlash(w, fmt.Sprintf("已建立新草稿，代碼：%s（請記下來方便「繼續未完成」）", ws.Code))
	http.Redirect(w, r, "/"+module+"/"+ws.Code, http.StatusSeeOther)
}

type continueVM struct {
	baseVM
	Module string
}

func (s *Server) handleContinueGet(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")
	if !validModule(module) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeHTMLTemplate(w, "code.html", continueVM{baseVM: s.baseVMForRequest(w, r), Module: module})
}

func (s *Server) handleContinuePost(w http.ResponseWriter, r *http.Request) {
	module := r.PathValue("module")
	if !validModule(module) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))
	if _, err := s.db.GetWorkspace(r.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			setFlash(w, "找不到這個代碼，請確認後再試一次。")
			http.Redirect(w, r, "/continue/"+module, http.StatusSeeOther)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	setWorkspaceCookies(w, code, true)
	http.Redirect(w, r, "/"+module+"/"+code, http.StatusSeeOther)
}

type objectivesVM struct {
	baseVM
	Code       string
	Objectives model.Objectives
	Groups     []model.GoalGroup
	Options    []string
	Categories []model.Category
}

func (s *Server) handleObjectivesGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}
	obj, err := s.db.Objectives(ctx, ws.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	groups, err := s.db.Groups(ctx, ws.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, "objectives.html", objectivesVM{
		baseVM:     s.baseVMForRequest(w, r),
		Code:       ws.Code,
		Objectives: obj,
		Groups:     groups,
		Options:    model.OptionsFor(obj.Category),
		Categories: []model.Category{model.CategoryOrientation, model.CategoryDailyLiving},
	})
}

// handleObjectivesPost parses the repeated-group form fields
// (long_term_goal_<i>, short_term_<i>[]) and transactionally replaces the
// workspace's goal groups. Indices arrive sparse after client-side removals;
// order follows the sorted index sequence.
func (s *Server) handleObjectivesPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	obj := model.Objectives{
		TargetDate:   strings.TrimSpace(r.PostForm.Get("target_date")),
		TeachingGoal: strings.TrimSpace(r.PostForm.Get("teaching_goal")),
		Category:     model.NormalizeCategory(r.PostForm.Get("category")),
	}
	if obj.TargetDate == "" {
		obj.TargetDate = todayYMD()
	}

	idxs := groupIndices(r.PostForm)
	if len(idxs) == 0 {
		setFlash(w, "至少需要一個長期目標。")
		http.Redirect(w, r, "/objectives/"+ws.Code, http.StatusSeeOther)
		return
	}

	var groups []model.GoalGroup
	for _, idx := range idxs {
		lt := strings.TrimSpace(r.PostForm.Get(fmt.Sprintf("long_term_goal_%d", idx)))
		if lt == "" {
			continue
		}
		g := model.GoalGroup{Index: idx, LongTerm: lt, Ord: len(groups) + 1}
		for _, st := range r.PostForm[fmt.Sprintf("short_term_%d[]", idx)] {
			if st = strings.TrimSpace(st); st != "" {
				g.ShortTerms = append(g.ShortTerms, st)
			}
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		setFlash(w, "長期目標不可全空白。")
		http.Redirect(w, r, "/objectives/"+ws.Code, http.StatusSeeOther)
		return
	}

	if err := s.db.SaveObjectives(ctx, ws.ID, obj, groups); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	setFlash(w, "已儲存：教學目標（含多組長期/短期目標）")
	http.Redirect(w, r, "/objectives/"+ws.Code, http.StatusSeeOther)
}

// groupIndices extracts the distinct group indices from submitted
// long_term_goal_<i> field names, sorted ascending.
func groupIndices(form url.Values) []int {
	var idxs []int
	seen := map[int]bool{}
	for k := range form {
		numeric, ok := strings.CutPrefix(k, "long_term_goal_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(numeric)
		if err != nil || n < 0 || seen[n] {
			continue
		}
		seen[n] = true
		idxs = append(idxs, n)
	}
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && idxs[j] < idxs[j-1]; j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
	return idxs
}

type recordsVM struct {
	baseVM
	Code    string
	Records []model.TeachingRecord
	Today   string
}

func (s *Server) handleRecordsGet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}
	recs, err := s.db.Records(r.Context(), ws.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTMLTemplate(w, "records.html", recordsVM{
		baseVM:  s.baseVMForRequest(w, r),
		Code:    ws.Code,
		Records: recs,
		Today:   todayYMD(),
	})
}

func (s *Server) handleRecordsPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}
	redirect := func() { http.Redirect(w, r, "/records/"+ws.Code, http.StatusSeeOther) }

	switch strings.TrimSpace(r.PostFormValue("action")) {
	case "add":
		rec := model.TeachingRecord{
			TeachDate:     strings.TrimSpace(r.PostFormValue("teach_date")),
			TeachTime:     strings.TrimSpace(r.PostFormValue("teach_time")),
			Effectiveness: strings.TrimSpace(r.PostFormValue("effectiveness")),
		}
		if rec.TeachDate == "" {
			rec.TeachDate = todayYMD()
		}
		if rec.TeachTime == "" {
			setFlash(w, "教學時間不可空白（例如：14:00-16:00）。")
			redirect()
			return
		}
		if err := s.db.AddRecord(ctx, ws.ID, rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		setFlash(w, "已新增一筆教學記錄。")
		redirect()

	case "delete":
		id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("rec_id")), 10, 64)
		if err == nil {
			if err := s.db.DeleteRecord(ctx, ws.ID, id); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			setFlash(w, "已刪除該筆記錄。")
		}
		redirect()

	default:
		redirect()
	}
}

// handleExport streams the plain-text plan document. The filename travels in
// Content-Disposition twice: an ASCII fallback in `filename` and the real
// name RFC 5987-encoded in `filename*`.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := s.lookupWorkspace(w, r)
	if !ok {
		return
	}
	obj, err := s.db.Objectives(ctx, ws.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	date := obj.TargetDate
	if date == "" {
		date = todayYMD()
	}
	groups, err := s.db.Groups(ctx, ws.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	recs, err := s.db.Records(ctx, ws.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := export.Filename(date, ws.Code)
	fallback := fmt.Sprintf("goalplan_%s.txt", ws.Code)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(filename)))
	_, _ = w.Write(export.WithBOM(export.BuildText(groups, recs)))
}

func (s *Server) lookupWorkspace(w http.ResponseWriter, r *http.Request) (model.Workspace, bool) {
	code := strings.TrimSpace(r.PathValue("code"))
	ws, err := s.db.GetWorkspace(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		setFlash(w, "找不到這個代碼。")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return model.Workspace{}, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return model.Workspace{}, false
	}
	return ws, true
}

// ---- JSON API ----

// handleAckCode marks the current workspace code as acknowledged so the
// hosted page stops forcing the "write this down" prompt.
func (s *Server) handleAckCode(w http.ResponseWriter, r *http.Request) {
	if code := cookieValue(r, "last_code"); code != "" {
		setWorkspaceCookies(w, code, true)
	} else {
		http.SetCookie(w, &http.Cookie{Name: "code_ack", Value: "1", Path: "/"})
	}
	writeJSON(w, http.StatusOK, apiResponse{OK: true})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := s.db.CreateWorkspace(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	obj := model.Objectives{TargetDate: todayYMD(), Category: model.CategoryOrientation}
	seed := []model.GoalGroup{{LongTerm: model.DefaultGoal(model.CategoryOrientation)}}
	if err := s.db.SaveObjectives(ctx, ws.ID, obj, seed); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{OK: true, Code: ws.Code})
}

// PlanPayload is the seed document the terminal editor loads a workspace
// from: the saved category plus one record per goal group.
type PlanPayload struct {
	OK         bool              `json:"ok"`
	Code       string            `json:"code"`
	Objectives model.Objectives  `json:"objectives"`
	Groups     []model.GoalGroup `json:"groups"`
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := strings.TrimSpace(r.PathValue("code"))
	ws, err := s.db.GetWorkspace(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, apiResponse{Error: "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	obj, err := s.db.Objectives(ctx, ws.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	groups, err := s.db.Groups(ctx, ws.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, PlanPayload{OK: true, Code: ws.Code, Objectives: obj, Groups: groups})
}

type deleteWorkspaceRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	var req deleteWorkspaceRequest
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Error: "bad json"})
			return
		}
	} else {
		req.Code = r.PostFormValue("code")
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "missing code"})
		return
	}
	err := s.db.DeleteWorkspace(r.Context(), req.Code)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, apiResponse{Error: "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{OK: true})
}

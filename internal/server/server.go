// Package server serves stored and live timetables over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/javiermolinar/timetable/internal/collapse"
	"github.com/javiermolinar/timetable/internal/db"
	"github.com/javiermolinar/timetable/internal/portal"
	"github.com/javiermolinar/timetable/internal/render"
	"github.com/javiermolinar/timetable/internal/timetable"
)

// StylesheetRoute is where the configured stylesheet is served.
const StylesheetRoute = "/static/styles.css"

// currentWeek is accepted in place of a week id.
const currentWeek = "current"

const shutdownTimeout = 5 * time.Second

// DefaultMaxOffset bounds live week offsets when Deps.MaxOffset is zero.
// Each week of offset costs one portal call.
const DefaultMaxOffset = 52

// Store is the read side of the timetable archive.
type Store interface {
	Load(ctx context.Context, entity string, week timetable.Week) (timetable.GroupGrid, error)
	LoadTeacher(ctx context.Context, teacherID string, week timetable.Week) (timetable.TeacherGrid, error)
	GetTeacher(ctx context.Context, id string) (timetable.Teacher, error)
	Entities(ctx context.Context, week timetable.Week) ([]string, error)
	ListTeachers(ctx context.Context) ([]timetable.Teacher, error)
}

// flusher is implemented by live sources that cache answers.
type flusher interface {
	Flush()
}

// Deps are the collaborators of a Server. Live may be nil, in which case
// the live routes answer 503.
type Deps struct {
	Store      Store
	Live       portal.EventSource
	Builder    *timetable.Builder
	Render     render.Options
	Stylesheet string // file served at StylesheetRoute when set
	MaxOffset  int    // live offsets outside ±MaxOffset are rejected
	Logger     *zap.Logger
}

// Server is the HTTP front of the archive.
type Server struct {
	deps   Deps
	engine *gin.Engine
	now    func() timetable.Week
}

// New wires the routes.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Builder == nil {
		deps.Builder = timetable.NewBuilder(nil, deps.Logger)
	}
	if deps.Stylesheet != "" {
		deps.Render.CSSPath = StylesheetRoute
	}
	if deps.MaxOffset <= 0 {
		deps.MaxOffset = DefaultMaxOffset
	}

	s := &Server{deps: deps, now: timetable.CurrentWeek}

	r := gin.New()
	r.Use(recovery(deps.Logger))
	r.Use(requestID())
	r.Use(accessLog(deps.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Stylesheet != "" {
		r.StaticFile(StylesheetRoute, deps.Stylesheet)
	}

	r.GET("/weeks/:week/groups", s.groups)
	r.GET("/groups/:group/:week", s.group)
	r.GET("/teachers", s.teachers)
	r.GET("/teachers/:teacher/:week", s.teacher)
	r.GET("/live/groups/:group", s.liveGroup)
	r.GET("/live/groups/:group/events", s.liveEvents)

	s.engine = r
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.deps.Logger.Info("server stopping")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) week(c *gin.Context) (timetable.Week, bool) {
	id := c.Param("week")
	if id == currentWeek {
		return s.now(), true
	}
	week, err := timetable.ParseWeekID(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return timetable.Week{}, false
	}
	return week, true
}

func (s *Server) groups(c *gin.Context) {
	week, ok := s.week(c)
	if !ok {
		return
	}
	entities, err := s.deps.Store.Entities(c.Request.Context(), week)
	if err != nil {
		s.fail(c, err)
		return
	}
	if entities == nil {
		entities = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"week": week.ID(), "groups": entities})
}

func (s *Server) group(c *gin.Context) {
	week, ok := s.week(c)
	if !ok {
		return
	}
	group := c.Param("group")
	grid, err := s.deps.Store.Load(c.Request.Context(), group, week)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Group(&buf, group, week, collapse.Group(grid), s.deps.Render); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type teacherEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Slug         string `json:"slug"`
}

func (s *Server) teachers(c *gin.Context) {
	list, err := s.deps.Store.ListTeachers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	entries := make([]teacherEntry, 0, len(list))
	for _, t := range list {
		entries = append(entries, teacherEntry{
			ID:           t.ID,
			Name:         t.FullName(),
			Abbreviation: t.Abbreviation(),
			Slug:         t.Translit(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"teachers": entries})
}

func (s *Server) teacher(c *gin.Context) {
	week, ok := s.week(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	teacher, err := s.deps.Store.GetTeacher(ctx, c.Param("teacher"))
	if errors.Is(err, db.ErrTeacherNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	grid, err := s.deps.Store.LoadTeacher(ctx, teacher.ID, week)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Teacher(&buf, teacher, week, collapse.Teacher(grid), s.deps.Render); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) liveGroup(c *gin.Context) {
	group := c.Param("group")
	offset, events, ok := s.live(c, group)
	if !ok {
		return
	}

	week := s.now().Add(offset)
	grid := s.deps.Builder.Build(events)

	var buf bytes.Buffer
	if err := render.Group(&buf, group, week, collapse.Group(grid), s.deps.Render); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// liveEvents answers the raw portal events, keyed by slot.
func (s *Server) liveEvents(c *gin.Context) {
	offset, events, ok := s.live(c, c.Param("group"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": s.now().Add(offset).ID(), "events": events})
}

// live fetches the events of a group at the requested offset. It writes the
// error response itself and reports false on failure. refresh=1 drops
// cached answers first.
func (s *Server) live(c *gin.Context, group string) (int, timetable.Events, bool) {
	if s.deps.Live == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "portal is not configured"})
		return 0, nil, false
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return 0, nil, false
		}
		offset = n
	}
	if offset < -s.deps.MaxOffset || offset > s.deps.MaxOffset {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("offset must be within ±%d weeks", s.deps.MaxOffset),
		})
		return 0, nil, false
	}

	if c.Query("refresh") == "1" {
		if f, ok := s.deps.Live.(flusher); ok {
			f.Flush()
		}
	}

	events, err := s.deps.Live.Events(c.Request.Context(), group, offset)
	if err != nil {
		if errors.Is(err, portal.ErrSessionExpired) {
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "portal session expired"})
			return 0, nil, false
		}
		s.fail(c, err)
		return 0, nil, false
	}
	return offset, events, true
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

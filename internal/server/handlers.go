package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/logloom/internal/aggregator"
	"github.com/atikulmunna/logloom/internal/filter"
	"github.com/atikulmunna/logloom/internal/loader"
	"github.com/atikulmunna/logloom/internal/model"
	"github.com/atikulmunna/logloom/internal/output"
)

type fileInfo struct {
	ID      string         `json:"id"`
	Lines   int            `json:"lines"`
	Filters []model.Filter `json:"filters"`
}

type loadRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

type rangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) listFiles(c *gin.Context) {
	ids := s.session.Files()
	out := make([]fileInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.fileInfo(id))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) fileInfo(id string) fileInfo {
	info := fileInfo{
		ID:      id,
		Lines:   s.session.LineCount(id),
		Filters: []model.Filter(s.session.GetFilters(id)),
	}
	if info.Filters == nil {
		info.Filters = []model.Filter{}
	}
	return info
}

func (s *Server) loadFile(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := loader.FileID(req.Name)
	existed := s.session.Has(id)
	lines, err := loader.ReadLines(strings.NewReader(req.Content))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec := s.session.LoadFile(id, lines)

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"id": rec.ID, "lines": len(rec.Lines), "loaded": !existed})
}

// knownFile aborts with 404 when the file is not loaded.
func (s *Server) knownFile(c *gin.Context) (string, bool) {
	id := c.Param("file")
	if !s.session.Has(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown file " + id})
		return "", false
	}
	return id, true
}

func (s *Server) getFilters(c *gin.Context) {
	id, ok := s.knownFile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.fileInfo(id).Filters)
}

func (s *Server) addFilter(c *gin.Context) {
	id, ok := s.knownFile(c)
	if !ok {
		return
	}

	var rec model.FilterRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := model.ParseFilterKind(rec.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, added := s.session.AddFilter(id, kind, rec.Value, rec.CaseSensitive)
	if !added {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter value must not be empty"})
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) replaceFilters(c *gin.Context) {
	id, ok := s.knownFile(c)
	if !ok {
		return
	}

	var chain model.FilterChain
	if err := c.ShouldBindJSON(&chain); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.ReplaceFilters(id, chain)
	c.JSON(http.StatusOK, s.fileInfo(id).Filters)
}

func (s *Server) removeFilter(c *gin.Context) {
	s.editFilter(c, s.session.RemoveFilter)
}

func (s *Server) moveFilterUp(c *gin.Context) {
	s.editFilter(c, s.session.MoveFilterUp)
}

func (s *Server) moveFilterDown(c *gin.Context) {
	s.editFilter(c, s.session.MoveFilterDown)
}

// editFilter runs an id-keyed edit. Edits that change nothing still succeed.
func (s *Server) editFilter(c *gin.Context, edit func(file, filterID string) bool) {
	id, ok := s.knownFile(c)
	if !ok {
		return
	}
	changed := edit(id, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"changed": changed, "filters": s.fileInfo(id).Filters})
}

func (s *Server) getRange(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.TimeRange())
}

func (s *Server) setRange(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := model.ParseBound(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start: " + err.Error()})
		return
	}
	end, err := model.ParseBound(req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end: " + err.Error()})
		return
	}

	s.session.SetTimeRange(start, end)
	c.JSON(http.StatusOK, s.session.TimeRange())
}

func (s *Server) getView(c *gin.Context) {
	res, err := s.session.Merge()
	if err != nil {
		s.patternFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": res.Lines, "stats": aggregator.Summarize(res)})
}

func (s *Server) downloadView(c *gin.Context) {
	lines, err := s.session.Render()
	if err != nil {
		s.patternFailure(c, err)
		return
	}

	var buf bytes.Buffer
	if err := output.RenderAll(output.NewPlainRenderer(&buf), lines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="filtered_log.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// patternFailure reports filters whose patterns did not compile.
func (s *Server) patternFailure(c *gin.Context, err error) {
	var rules []gin.H
	for _, pe := range filter.PatternErrors(err) {
		rules = append(rules, gin.H{"filter": pe.Filter, "reason": pe.Err.Error()})
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "rules": rules})
}
